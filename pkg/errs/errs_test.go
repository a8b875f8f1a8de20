package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(UserRejected, "connection prompt declined")
	if KindOf(err) != UserRejected {
		t.Fatalf("unexpected kind: %v", KindOf(err))
	}

	if KindOf(errors.New("plain")) != Unknown {
		t.Fatal("plain error should classify as Unknown")
	}
	if KindOf(nil) != Unknown {
		t.Fatal("nil should classify as Unknown")
	}
}

func TestKindOfWrappedChain(t *testing.T) {
	inner := New(ChainQueryFailed, "rpc eof")
	outer := fmt.Errorf("loading hotels: %w", inner)

	if KindOf(outer) != ChainQueryFailed {
		t.Fatalf("classification lost through wrapping: %v", KindOf(outer))
	}
	if !IsKind(outer, ChainQueryFailed) {
		t.Fatal("IsKind should see through fmt.Errorf wrapping")
	}
	if IsKind(outer, UserRejected) {
		t.Fatal("IsKind matched the wrong kind")
	}
}

func TestWrapNilCause(t *testing.T) {
	if Wrap(ChainSwitchFailed, nil, "switch") != nil {
		t.Fatal("wrapping a nil cause must yield nil")
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("code 4902")
	err := Wrap(ChainSwitchFailed, cause, "wallet_switchEthereumChain")

	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "chain switch failed") {
		t.Fatalf("kind missing from message: %s", err.Error())
	}
	if !strings.Contains(err.Error(), "4902") {
		t.Fatalf("cause missing from message: %s", err.Error())
	}
}

func TestRevertReasonVerbatim(t *testing.T) {
	reason := "InnChain: only hotel wallet can confirm check-in"
	err := Revert(reason, errors.New("execution reverted"))

	got, ok := RevertReason(err)
	if !ok {
		t.Fatal("expected a revert reason")
	}
	if got != reason {
		t.Fatalf("reason altered: %q", got)
	}

	if _, ok := RevertReason(New(ChainQueryFailed, "x")); ok {
		t.Fatal("non-revert error must not report a reason")
	}
}

func TestKindStrings(t *testing.T) {
	kinds := []Kind{
		WalletUnavailable, UserRejected, ChainSwitchFailed, ChainAddFailed,
		SignerUnavailable, ChainQueryFailed, RoomClassNotFound,
		BookingIDNotResolved, ContractRevert, Unknown,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		if s == "" {
			t.Fatalf("empty string for kind %d", k)
		}
		if seen[s] {
			t.Fatalf("duplicate kind string %q", s)
		}
		seen[s] = true
	}
}
