// Package config defines the runtime configuration for the SDK: the target
// chain parameters, the escrow and payment token contract addresses, an
// optional signing key, and operation timeouts. It also provides validation
// and defaulting helpers plus environment-based loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Chain describes the target blockchain network. ChainID is used for EIP-155
// signing and chain negotiation; the remaining fields are the parameters a
// wallet needs to add the chain when it does not know it yet.
type Chain struct {
	ChainID        int64  `json:"chain_id"`
	Name           string `json:"name"`
	CurrencySymbol string `json:"currency_symbol"`
	RPCURL         string `json:"rpc_url"`
	ExplorerURL    string `json:"explorer_url"`
}

// LiskSepolia is the predefined default network the booking contract is
// deployed on.
var LiskSepolia = Chain{
	ChainID:        4202,
	Name:           "Lisk Sepolia Testnet",
	CurrencySymbol: "ETH",
	RPCURL:         "https://rpc.sepolia-api.lisk.com",
	ExplorerURL:    "https://sepolia-blockscout.lisk.com",
}

// Config holds all SDK settings required to initialize the chain client,
// the wallet provider and the booking client.
// Use Validate to fill implicit defaults and to check for required fields.
type Config struct {
	// Chain selects the target network. Defaults to LiskSepolia when unset.
	Chain Chain `json:"chain" yaml:"chain"`
	// EscrowAddr is the hex address of the booking escrow contract (required).
	EscrowAddr string `json:"escrow_addr" yaml:"escrow_addr"`
	// TokenAddr is the hex address of the ERC-20 payment token (required).
	TokenAddr string `json:"token_addr" yaml:"token_addr"`
	// PrivateKey is the hex-encoded ECDSA private key used for signed
	// operations (optional if you only do read-only queries, or if you inject
	// your own wallet provider).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
//
// Wallet-gated steps (signature prompts) and receipt waits are deliberately
// unbounded unless the caller's context says otherwise: an already-submitted
// transaction cannot be un-submitted, so giving up early only stops the
// waiting, never the transaction.
type Timeouts struct {
	Dial        time.Duration // RPC dial/connect
	ChainRead   time.Duration // eth_call, balance etc
	ChainSubmit time.Duration // send tx
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	return tt
}

// Validate normalizes the configuration by applying the documented fallback
// chain (LiskSepolia) when no chain is configured and verifies that both
// contract addresses are present and well-formed hex addresses.
func (c *Config) Validate() error {
	if c.Chain.ChainID == 0 {
		c.Chain = LiskSepolia
	}

	if c.Chain.RPCURL == "" {
		return errors.New("chain RPC URL is required")
	}

	if c.EscrowAddr == "" {
		return errors.New("escrow contract address is required")
	}
	if !common.IsHexAddress(c.EscrowAddr) {
		return fmt.Errorf("invalid escrow contract address: %s", c.EscrowAddr)
	}

	if c.TokenAddr == "" {
		return errors.New("payment token address is required")
	}
	if !common.IsHexAddress(c.TokenAddr) {
		return fmt.Errorf("invalid payment token address: %s", c.TokenAddr)
	}

	return nil
}

// EscrowAddress returns the parsed escrow contract address.
func (c *Config) EscrowAddress() common.Address {
	return common.HexToAddress(c.EscrowAddr)
}

// TokenAddress returns the parsed payment token address.
func (c *Config) TokenAddress() common.Address {
	return common.HexToAddress(c.TokenAddr)
}

// FromEnv builds a Config from environment variables, loading a .env file
// from the working directory first when one exists. Recognized variables:
//
//	INNCHAIN_CONTRACT  escrow contract address (required)
//	USDC_TOKEN         payment token address (required)
//	RPC_ADDR           RPC endpoint override
//	CHAIN_ID           chain id override
//	PRIVATE_KEY        hex signing key (optional)
//	DEBUG              "true" enables debug logging
//
// The returned config has already been validated.
func FromEnv() (*Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		EscrowAddr: os.Getenv("INNCHAIN_CONTRACT"),
		TokenAddr:  os.Getenv("USDC_TOKEN"),
		PrivateKey: os.Getenv("PRIVATE_KEY"),
		Debug:      os.Getenv("DEBUG") == "true",
	}

	if v := os.Getenv("CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAIN_ID %q: %w", v, err)
		}
		cfg.Chain = LiskSepolia
		cfg.Chain.ChainID = id
	}
	if v := os.Getenv("RPC_ADDR"); v != "" {
		if cfg.Chain.ChainID == 0 {
			cfg.Chain = LiskSepolia
		}
		cfg.Chain.RPCURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
