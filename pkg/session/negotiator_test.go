package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dindasrg/chain-hotel-bookings/internal/testutil"
	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/session"
)

func TestEnsureTargetChainAlreadyThere(t *testing.T) {
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)

	err := session.EnsureTargetChain(context.Background(), w, config.LiskSepolia)
	require.NoError(t, err)
	assert.Zero(t, w.SwitchCalls)
	assert.Zero(t, w.AddCalls)
}

func TestEnsureTargetChainSwitches(t *testing.T) {
	w := testutil.NewFakeWallet(1)
	w.KnownChains[config.LiskSepolia.ChainID] = true

	err := session.EnsureTargetChain(context.Background(), w, config.LiskSepolia)
	require.NoError(t, err)
	assert.Equal(t, 1, w.SwitchCalls)
	assert.Zero(t, w.AddCalls)
	assert.Equal(t, config.LiskSepolia.ChainID, w.ActiveChain.Int64())
}

func TestEnsureTargetChainAddsUnknownChain(t *testing.T) {
	w := testutil.NewFakeWallet(1)

	err := session.EnsureTargetChain(context.Background(), w, config.LiskSepolia)
	require.NoError(t, err)
	assert.Equal(t, 1, w.SwitchCalls)
	assert.Equal(t, 1, w.AddCalls)
	assert.Equal(t, config.LiskSepolia.ChainID, w.ActiveChain.Int64())
}

func TestEnsureTargetChainSwitchRejected(t *testing.T) {
	w := testutil.NewFakeWallet(1)
	w.RejectSwitch = true

	err := session.EnsureTargetChain(context.Background(), w, config.LiskSepolia)
	assert.True(t, errs.IsKind(err, errs.UserRejected), "got %v", err)
	assert.Zero(t, w.AddCalls)
}

func TestEnsureTargetChainAddRejected(t *testing.T) {
	w := testutil.NewFakeWallet(1)
	w.RejectAdd = true

	err := session.EnsureTargetChain(context.Background(), w, config.LiskSepolia)
	assert.True(t, errs.IsKind(err, errs.UserRejected), "got %v", err)
	assert.Equal(t, 1, w.AddCalls)
}

func TestEnsureTargetChainAddFails(t *testing.T) {
	w := testutil.NewFakeWallet(1)
	w.AddErr = errors.New("wallet exploded")

	err := session.EnsureTargetChain(context.Background(), w, config.LiskSepolia)
	assert.True(t, errs.IsKind(err, errs.ChainAddFailed), "got %v", err)
	assert.Equal(t, 1, w.AddCalls)
	// The wallet is asked to add the chain exactly once per negotiation.
	err = session.EnsureTargetChain(context.Background(), w, config.LiskSepolia)
	assert.True(t, errs.IsKind(err, errs.ChainAddFailed), "got %v", err)
	assert.Equal(t, 2, w.AddCalls)
}
