package blockchain

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/wallet"
)

// dataErr mimics the error shape geth's rpc client returns for reverted calls.
type dataErr struct {
	msg  string
	data interface{}
}

func (e *dataErr) Error() string          { return e.msg }
func (e *dataErr) ErrorData() interface{} { return e.data }

func revertData(t *testing.T, reason string) string {
	t.Helper()
	strType, err := abi.NewType("string", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	packed, err := abi.Arguments{{Type: strType}}.Pack(reason)
	if err != nil {
		t.Fatal(err)
	}
	return "0x08c379a0" + hex.EncodeToString(packed)
}

func TestRevertReasonFromErrorData(t *testing.T) {
	err := &dataErr{msg: "execution reverted", data: revertData(t, "Room class inactive")}
	reason, ok := RevertReason(err)
	if !ok {
		t.Fatal("expected revert to be recognized")
	}
	if reason != "Room class inactive" {
		t.Errorf("reason = %q, want %q", reason, "Room class inactive")
	}
}

func TestRevertReasonFromMessage(t *testing.T) {
	err := errors.New("execution reverted: Insufficient allowance")
	reason, ok := RevertReason(err)
	if !ok {
		t.Fatal("expected revert to be recognized")
	}
	if reason != "Insufficient allowance" {
		t.Errorf("reason = %q, want %q", reason, "Insufficient allowance")
	}
}

func TestRevertReasonWithoutMessage(t *testing.T) {
	reason, ok := RevertReason(errors.New("execution reverted"))
	if !ok {
		t.Fatal("expected revert to be recognized")
	}
	if reason != "" {
		t.Errorf("reason = %q, want empty", reason)
	}
}

func TestRevertReasonNonRevert(t *testing.T) {
	if _, ok := RevertReason(errors.New("connection refused")); ok {
		t.Fatal("non-revert error classified as revert")
	}
	if _, ok := RevertReason(nil); ok {
		t.Fatal("nil error classified as revert")
	}
}

func TestClassifyWriteError(t *testing.T) {
	rejected := &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "user rejected"}
	if got := errs.KindOf(ClassifyWriteError("approve", rejected)); got != errs.UserRejected {
		t.Errorf("kind = %v, want UserRejected", got)
	}

	reverted := &dataErr{msg: "execution reverted", data: revertData(t, "Hotel not active")}
	err := ClassifyWriteError("createBooking", reverted)
	if got := errs.KindOf(err); got != errs.ContractRevert {
		t.Fatalf("kind = %v, want ContractRevert", got)
	}
	if reason, _ := errs.RevertReason(err); reason != "Hotel not active" {
		t.Errorf("reason = %q, want %q", reason, "Hotel not active")
	}

	plain := errors.New("dial tcp: connection refused")
	if got := ClassifyWriteError("approve", plain); !errors.Is(got, plain) {
		t.Error("transport error should pass through unchanged")
	}
	if got := errs.KindOf(ClassifyWriteError("approve", plain)); got != errs.Unknown {
		t.Errorf("kind = %v, want Unknown", got)
	}

	if ClassifyWriteError("approve", nil) != nil {
		t.Error("nil error should stay nil")
	}
}
