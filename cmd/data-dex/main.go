package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alienworld1/data-dex/internal/config"
	"github.com/alienworld1/data-dex/internal/events"
	"github.com/alienworld1/data-dex/internal/funds"
	"github.com/alienworld1/data-dex/internal/handlers"
	"github.com/alienworld1/data-dex/internal/ledger"
	"github.com/alienworld1/data-dex/internal/middleware"
	"github.com/alienworld1/data-dex/internal/p2p"
	"github.com/alienworld1/data-dex/internal/services"
	"github.com/alienworld1/data-dex/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "data-dex",
		Short: "data-dex - dataset marketplace ledger",
		Long:  `Gateway and ledger for the data-dex dataset marketplace: listings, purchases with fee splitting, user statistics and the milestone reward pool.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.toml)")
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the marketplace gateway",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	configPath := cfgFile
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "config.toml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Warnf("failed to load config from %s, using defaults", configPath)
		cfg = config.DefaultConfig()
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.Migrate(migrationsPath); err != nil {
		logger.WithError(err).Warn("migrations failed")
	}

	// The bank is the local funds-transfer capability; production swaps in
	// real custody behind the same interface.
	bank := funds.NewBank()

	market, err := ledger.New(bank, cfg.Market.PlatformAddress, *cfg.Market.FeePercent, ledger.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	if err := seedRewardPool(market, bank, cfg, logger); err != nil {
		return err
	}

	journal := events.NewJournal(db, logger)
	defer journal.Close()
	market.Events().Subscribe(journal)

	var node *p2p.Node
	if cfg.P2P.Enabled {
		node = p2p.NewNode(p2p.NodeConfig{
			ListenAddresses: cfg.P2P.ListenAddresses,
			BootstrapPeers:  cfg.P2P.BootstrapPeers,
		}, logger)
		if err := node.Start(ctx); err != nil {
			return fmt.Errorf("failed to start P2P node: %w", err)
		}
		defer node.Close()
		market.Events().Subscribe(node)
		logger.WithField("peer_id", node.ID().String()).Info("P2P node started")
	}

	router := buildRouter(cfg, db, market, bank)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("server forced to shutdown")
		}
	}()

	logger.WithField("addr", srv.Addr).Info("data-dex gateway starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// seedRewardPool funds the admin, initializes the pool and loads the
// configured milestones.
func seedRewardPool(market *ledger.Ledger, bank *funds.Bank, cfg *config.Config, logger *logrus.Logger) error {
	admin := cfg.Market.AdminAddress
	if cfg.Market.InitialPoolBalance > 0 {
		if err := bank.Deposit(admin, cfg.Market.InitialPoolBalance); err != nil {
			return fmt.Errorf("failed to fund admin account: %w", err)
		}
	}
	if err := market.InitializePool(admin, cfg.Market.InitialPoolBalance); err != nil {
		return fmt.Errorf("failed to initialize reward pool: %w", err)
	}
	for _, m := range cfg.Milestones {
		id, err := market.AddMilestone(admin, ledger.MilestoneSpec{
			Name:         m.Name,
			Description:  m.Description,
			Requirement:  m.Requirement,
			RewardAmount: m.RewardAmount,
		})
		if err != nil {
			return fmt.Errorf("failed to add milestone %q: %w", m.Name, err)
		}
		logger.WithFields(logrus.Fields{"milestone_id": id, "name": m.Name}).Info("milestone configured")
	}
	return nil
}

func buildRouter(cfg *config.Config, db *storage.DB, market *ledger.Ledger, bank *funds.Bank) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	jwtSecret := os.Getenv("JWT_SECRET")
	accounts := services.NewAccountService(db, cfg.Market.AdminEmails)
	authHandler := handlers.NewAuthHandler(accounts, jwtSecret)
	datasetHandler := handlers.NewDatasetHandler(market)
	marketHandler := handlers.NewMarketHandler(market, bank)
	rewardHandler := handlers.NewRewardHandler(market, cfg.Market.AdminAddress)

	authRequired := middleware.JWTMiddleware(jwtSecret)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/profile", authRequired, authHandler.Profile)
		}

		datasets := api.Group("/datasets")
		{
			datasets.GET("", datasetHandler.List)
			datasets.GET("/:id", datasetHandler.Get)
			datasets.GET("/:id/purchases", marketHandler.Purchases)
			datasets.POST("", authRequired, datasetHandler.Create)
			datasets.PUT("/:id/price", authRequired, datasetHandler.SetPrice)
			datasets.DELETE("/:id", authRequired, datasetHandler.Deactivate)
			datasets.POST("/:id/purchase", authRequired, marketHandler.Purchase)
		}

		me := api.Group("/me", authRequired)
		{
			me.GET("/datasets", datasetHandler.ListMine)
			me.GET("/stats", marketHandler.MyStats)
			me.GET("/achievements", marketHandler.MyAchievements)
			me.GET("/balance", marketHandler.Balance)
			me.POST("/deposit", marketHandler.Deposit)
		}

		api.GET("/events", marketHandler.Events)

		pool := api.Group("/pool")
		{
			pool.GET("", rewardHandler.Pool)
			admin := pool.Group("", authRequired, middleware.AdminOnly())
			{
				admin.POST("/replenish", rewardHandler.Replenish)
				admin.POST("/bonus", rewardHandler.PayBonus)
				admin.POST("/milestones", rewardHandler.AddMilestone)
				admin.DELETE("/milestones/:id", rewardHandler.DeactivateMilestone)
				admin.POST("/milestones/transfer", rewardHandler.TransferReward)
				admin.POST("/milestones/evaluate", rewardHandler.Evaluate)
			}
		}
	}

	return router
}
