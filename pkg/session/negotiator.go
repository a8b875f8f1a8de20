package session

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/wallet"
)

// EnsureTargetChain moves the wallet onto the target chain. When the wallet
// already reports the target chain it does nothing. Otherwise it asks for a
// switch; a wallet that does not know the chain gets exactly one add-chain
// request carrying the full chain parameters. User rejections surface as
// UserRejected, a failed add as ChainAddFailed, any other switch failure as
// ChainSwitchFailed.
func EnsureTargetChain(ctx context.Context, p wallet.Provider, target config.Chain) error {
	current, err := p.ChainID(ctx)
	if err != nil {
		return errs.Wrap(errs.ChainQueryFailed, err, "query active chain")
	}
	want := big.NewInt(target.ChainID)
	if current.Cmp(want) == 0 {
		return nil
	}

	zap.L().Info("switching wallet chain",
		zap.String("from", current.String()),
		zap.Int64("to", target.ChainID))

	err = p.SwitchChain(ctx, want)
	switch {
	case err == nil:
		return nil
	case wallet.IsUserRejected(err):
		return errs.Wrap(errs.UserRejected, err, "chain switch rejected")
	case wallet.IsChainNotAdded(err):
		zap.L().Info("chain unknown to wallet, requesting add",
			zap.Int64("chain_id", target.ChainID),
			zap.String("rpc", target.RPCURL))
		if err := p.AddChain(ctx, target); err != nil {
			if wallet.IsUserRejected(err) {
				return errs.Wrap(errs.UserRejected, err, "adding chain rejected")
			}
			return errs.Wrap(errs.ChainAddFailed, err, "add chain "+target.Name)
		}
		return nil
	default:
		return errs.Wrap(errs.ChainSwitchFailed, err, "switch to chain "+target.Name)
	}
}
