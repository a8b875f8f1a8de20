package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dindasrg/chain-hotel-bookings/internal/testutil"
	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		EscrowAddr: "0x1111111111111111111111111111111111111111",
		TokenAddr:  "0x2222222222222222222222222222222222222222",
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestConnectHappyPath(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	m := session.NewManager(w, testConfig(t))

	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(t, session.StatusConnected, m.Status())
	assert.Equal(t, w.Account, m.Account())
	assert.Equal(t, config.LiskSepolia.ChainID, m.ChainID().Int64())
	assert.Zero(t, w.SwitchCalls)
}

func TestConnectNegotiatesChain(t *testing.T) {
	w := testutil.NewFakeWallet(1)
	m := session.NewManager(w, testConfig(t))

	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(t, session.StatusConnected, m.Status())
	assert.Equal(t, 1, w.SwitchCalls)
	assert.Equal(t, 1, w.AddCalls)
	assert.Equal(t, config.LiskSepolia.ChainID, m.ChainID().Int64())
}

func TestConnectRejected(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	w.RejectAccounts = true
	m := session.NewManager(w, testConfig(t))

	err := m.Connect(context.Background())
	assert.True(t, errs.IsKind(err, errs.UserRejected), "got %v", err)
	assert.Equal(t, session.StatusDisconnected, m.Status())
}

func TestConnectSwitchRejectedLeavesDisconnected(t *testing.T) {
	w := testutil.NewFakeWallet(1)
	w.RejectSwitch = true
	m := session.NewManager(w, testConfig(t))

	err := m.Connect(context.Background())
	assert.True(t, errs.IsKind(err, errs.UserRejected), "got %v", err)
	assert.Equal(t, session.StatusDisconnected, m.Status())
	assert.Equal(t, common.Address{}, m.Account())
	assert.Nil(t, m.ChainID())
}

func TestConnectTwiceIsNoop(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	m := session.NewManager(w, testConfig(t))

	require.NoError(t, m.Connect(context.Background()))
	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(t, session.StatusConnected, m.Status())
}

// slowWallet gates RequestAccounts so tests can hold a Connect in flight.
type slowWallet struct {
	*testutil.FakeWallet
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (w *slowWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	w.once.Do(func() { close(w.entered) })
	select {
	case <-w.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return w.FakeWallet.RequestAccounts(ctx)
}

func TestConnectSingleFlight(t *testing.T) {
	w := &slowWallet{
		FakeWallet: testutil.NewFakeWallet(config.LiskSepolia.ChainID),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	m := session.NewManager(w, testConfig(t))

	errc := make(chan error, 2)
	go func() { errc <- m.Connect(context.Background()) }()
	<-w.entered
	assert.Equal(t, session.StatusConnecting, m.Status())
	go func() { errc <- m.Connect(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	close(w.release)

	require.NoError(t, <-errc)
	require.NoError(t, <-errc)
	assert.Equal(t, session.StatusConnected, m.Status())
}

func TestSignerRequiresConnection(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	m := session.NewManager(w, testConfig(t))

	_, err := m.Signer(context.Background())
	assert.True(t, errs.IsKind(err, errs.SignerUnavailable), "got %v", err)
	assert.Zero(t, w.SignCalls, "disconnected signer request must not prompt the wallet")

	require.NoError(t, m.Connect(context.Background()))
	opts, err := m.Signer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, w.Account, opts.From)
}

func TestSignerRejection(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	m := session.NewManager(w, testConfig(t))
	require.NoError(t, m.Connect(context.Background()))

	w.RejectSign = true
	_, err := m.Signer(context.Background())
	assert.True(t, errs.IsKind(err, errs.UserRejected), "got %v", err)
}

func TestAccountsRevokedDisconnects(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	m := session.NewManager(w, testConfig(t))
	require.NoError(t, m.Connect(context.Background()))

	w.EmitAccountsChanged(nil)
	assert.Equal(t, session.StatusDisconnected, m.Status())
	assert.Equal(t, common.Address{}, m.Account())
}

func TestAccountSwitchFollowsWallet(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	m := session.NewManager(w, testConfig(t))
	require.NoError(t, m.Connect(context.Background()))

	next := common.HexToAddress("0x9999999999999999999999999999999999999999")
	w.EmitAccountsChanged([]common.Address{next})
	assert.Equal(t, session.StatusConnected, m.Status())
	assert.Equal(t, next, m.Account())
}

func TestChainChangeResetsSession(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	m := session.NewManager(w, testConfig(t))

	var resets int
	m.SetOnReset(func() { resets++ })
	require.NoError(t, m.Connect(context.Background()))

	w.EmitChainChanged(1)
	assert.Equal(t, session.StatusDisconnected, m.Status())
	assert.Equal(t, 1, resets)

	// Reporting the chain the session already uses must not reset it.
	require.NoError(t, m.Connect(context.Background()))
	w.EmitChainChanged(config.LiskSepolia.ChainID)
	assert.Equal(t, session.StatusConnected, m.Status())
	assert.Equal(t, 1, resets)
}

func TestDisconnectIdempotent(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	m := session.NewManager(w, testConfig(t))
	require.NoError(t, m.Connect(context.Background()))

	m.Disconnect()
	m.Disconnect()
	assert.Equal(t, session.StatusDisconnected, m.Status())
	assert.Nil(t, m.ChainID())

	// Notifications after disconnect are ignored.
	w.EmitChainChanged(1)
	assert.Equal(t, session.StatusDisconnected, m.Status())
}
