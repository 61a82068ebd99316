package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alienworld1/data-dex/internal/ledger"
	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/sirupsen/logrus"
)

// AnnounceProtocol is the stream protocol new listings are broadcast on.
// Peers mirroring the marketplace index subscribe by handling this protocol.
const AnnounceProtocol = protocol.ID("/data-dex/1.0.0/announce")

// Node is the marketplace's libp2p presence: it joins the DHT for peer
// discovery and pushes dataset listing announcements to connected peers.
type Node struct {
	host   host.Host
	dht    *dht.IpfsDHT
	logger *logrus.Logger
	config NodeConfig
}

// NodeConfig holds P2P node configuration.
type NodeConfig struct {
	ListenAddresses []string
	BootstrapPeers  []string
}

// NewNode creates a new libp2p node.
func NewNode(cfg NodeConfig, logger *logrus.Logger) *Node {
	if len(cfg.ListenAddresses) == 0 {
		cfg.ListenAddresses = []string{
			"/ip4/0.0.0.0/tcp/0",
			"/ip4/0.0.0.0/udp/0/quic-v1",
		}
	}
	return &Node{config: cfg, logger: logger}
}

// Start brings up the host, joins the DHT and connects to bootstrap peers.
func (n *Node) Start(ctx context.Context) error {
	h, err := libp2p.New(libp2p.ListenAddrStrings(n.config.ListenAddresses...))
	if err != nil {
		return fmt.Errorf("failed to create libp2p host: %w", err)
	}
	n.host = h

	kadDHT, err := dht.New(ctx, h)
	if err != nil {
		return fmt.Errorf("failed to create DHT: %w", err)
	}
	n.dht = kadDHT

	if err := kadDHT.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap DHT: %w", err)
	}

	for _, addr := range n.config.BootstrapPeers {
		if err := n.Connect(ctx, addr); err != nil {
			n.logger.WithError(err).WithField("peer", addr).Warn("bootstrap peer unreachable")
		}
	}
	return nil
}

// Close shuts down the DHT and the host.
func (n *Node) Close() error {
	if n.dht != nil {
		if err := n.dht.Close(); err != nil {
			return err
		}
	}
	if n.host != nil {
		return n.host.Close()
	}
	return nil
}

// Host returns the libp2p host.
func (n *Node) Host() host.Host {
	return n.host
}

// ID returns the peer ID.
func (n *Node) ID() peer.ID {
	if n.host == nil {
		return ""
	}
	return n.host.ID()
}

// Addrs returns the multiaddrs the node is listening on.
func (n *Node) Addrs() []string {
	if n.host == nil {
		return nil
	}
	var addrs []string
	for _, addr := range n.host.Addrs() {
		addrs = append(addrs, addr.String())
	}
	return addrs
}

// Connect connects to a peer given its multiaddr.
func (n *Node) Connect(ctx context.Context, peerAddr string) error {
	addrInfo, err := peer.AddrInfoFromString(peerAddr)
	if err != nil {
		return fmt.Errorf("failed to parse peer address: %w", err)
	}
	if err := n.host.Connect(ctx, *addrInfo); err != nil {
		return fmt.Errorf("failed to connect to peer: %w", err)
	}
	return nil
}

// SetStreamHandler sets a handler for a protocol.
func (n *Node) SetStreamHandler(protocolID protocol.ID, handler network.StreamHandler) {
	n.host.SetStreamHandler(protocolID, handler)
}

// HandleEvent implements ledger.Sink: new dataset listings are pushed to every
// connected peer so remote indexes learn about content without polling the
// gateway. Other event kinds stay local.
func (n *Node) HandleEvent(evt ledger.Event) {
	if evt.Type != ledger.EventDatasetListed || n.host == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		n.logger.WithError(err).Error("failed to encode announcement")
		return
	}
	go n.broadcast(payload)
}

func (n *Node) broadcast(payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, pid := range n.host.Network().Peers() {
		stream, err := n.host.NewStream(ctx, pid, AnnounceProtocol)
		if err != nil {
			continue
		}
		if _, err := stream.Write(payload); err != nil {
			n.logger.WithError(err).WithField("peer", pid.String()).Debug("announcement write failed")
		}
		stream.Close()
	}
}
