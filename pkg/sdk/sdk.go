// Package sdk exposes the high-level entry point for the hotel booking
// escrow client. It wires together chain access, the wallet session, the
// booking operations and the contract event subscriptions.
package sdk

import (
	"context"

	"go.uber.org/zap"

	"github.com/dindasrg/chain-hotel-bookings/pkg/blockchain"
	"github.com/dindasrg/chain-hotel-bookings/pkg/booking"
	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/session"
	"github.com/dindasrg/chain-hotel-bookings/pkg/wallet"
)

// SDK is the public surface for applications. Read operations work as soon as
// the SDK is constructed; write operations additionally require Connect.
type SDK interface {
	// Connect establishes the wallet session and negotiates the target chain.
	Connect(ctx context.Context) error

	// Disconnect tears the wallet session down locally.
	Disconnect()

	// Session exposes the connection state manager.
	Session() *session.Manager

	// Bookings exposes queries and booking flows.
	Bookings() *booking.Client

	// Events exposes contract event subscriptions.
	Events() *booking.Subscriptions

	// Close releases every resource: subscriptions, session and the chain
	// connection.
	Close()
}

// init configures a default global zap logger. Applications may replace it
// with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Core is the concrete SDK implementation.
type Core struct {
	cfg    *config.Config
	chain  *blockchain.ChainClient
	sess   *session.Manager
	client *booking.Client
	subs   *booking.Subscriptions
}

// Option customizes SDK construction.
type Option func(*options)

type options struct {
	provider wallet.Provider
	backend  blockchain.Backend
}

// WithProvider substitutes the wallet provider. Without it the SDK builds a
// headless keyed wallet from the configured private key, or stays read-only
// when no key is configured.
func WithProvider(p wallet.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithBackend substitutes the chain backend, skipping the RPC dial. Intended
// for tests and for applications that share one client across components.
func WithBackend(b blockchain.Backend) Option {
	return func(o *options) { o.backend = b }
}

// New validates the configuration and assembles the SDK. The wallet session
// starts disconnected; call Connect before any write operation.
func New(cfg *config.Config, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	if cfg.Debug {
		logger, err := zap.NewDevelopment()
		if err == nil {
			zap.ReplaceGlobals(logger)
		}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var chain *blockchain.ChainClient
	if o.backend != nil {
		chain = blockchain.NewChainClient(o.backend, cfg)
	} else {
		var err error
		chain, err = blockchain.Dial(cfg)
		if err != nil {
			return nil, err
		}
	}

	provider := o.provider
	if provider == nil && cfg.PrivateKey != "" {
		keyed, err := wallet.NewKeyed(cfg.PrivateKey, cfg.Chain.RPCURL)
		if err != nil {
			chain.Close()
			return nil, err
		}
		provider = keyed
	}

	sess := session.NewManager(provider, cfg)
	return &Core{
		cfg:    cfg,
		chain:  chain,
		sess:   sess,
		client: booking.NewClient(chain, sess, cfg),
		subs:   booking.NewSubscriptions(chain),
	}, nil
}

func (c *Core) Connect(ctx context.Context) error {
	return c.sess.Connect(ctx)
}

func (c *Core) Disconnect() {
	c.sess.Disconnect()
}

func (c *Core) Session() *session.Manager {
	return c.sess
}

func (c *Core) Bookings() *booking.Client {
	return c.client
}

func (c *Core) Events() *booking.Subscriptions {
	return c.subs
}

// Close releases subscriptions, the wallet session, and the chain connection.
func (c *Core) Close() {
	c.subs.Close()
	c.sess.Close()
	c.chain.Close()
	zap.L().Info("sdk closed")
}

var _ SDK = (*Core)(nil)
