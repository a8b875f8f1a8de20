package blockchain

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/wallet"
)

const revertPrefix = "execution reverted"

// RevertReason extracts the contract's revert string from a node error, when
// one is present. The second return reports whether the error was a revert at
// all; the reason itself may still be empty for reverts without a message.
func RevertReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if de, ok := err.(rpc.DataError); ok {
		if reason, ok := unpackRevertData(de.ErrorData()); ok {
			return reason, true
		}
	}
	msg := err.Error()
	if idx := strings.Index(msg, revertPrefix); idx >= 0 {
		reason := strings.TrimPrefix(msg[idx+len(revertPrefix):], ":")
		return strings.TrimSpace(reason), true
	}
	return "", false
}

func unpackRevertData(data interface{}) (string, bool) {
	s, ok := data.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}

// ClassifyWriteError maps a failed transaction submission into the error
// taxonomy: wallet rejections keep their kind, contract reverts carry the
// verbatim reason, and anything else passes through unchanged.
func ClassifyWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if wallet.IsUserRejected(err) {
		return errs.Wrap(errs.UserRejected, err, op+" rejected by wallet")
	}
	if reason, ok := RevertReason(err); ok {
		return errs.Revert(reason, err)
	}
	return err
}
