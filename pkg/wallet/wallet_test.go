package wallet

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsUserRejected(t *testing.T) {
	err := &RPCError{Code: CodeUserRejected, Message: "User rejected the request."}
	if !IsUserRejected(err) {
		t.Fatal("expected user rejection")
	}
	if IsChainNotAdded(err) {
		t.Fatal("4001 must not classify as chain-not-added")
	}

	wrapped := fmt.Errorf("requesting accounts: %w", err)
	if !IsUserRejected(wrapped) {
		t.Fatal("classification must see through wrapping")
	}
}

func TestIsChainNotAdded(t *testing.T) {
	err := &RPCError{Code: CodeChainNotAdded, Message: "Unrecognized chain ID"}
	if !IsChainNotAdded(err) {
		t.Fatal("expected chain-not-added")
	}
	if IsUserRejected(err) {
		t.Fatal("4902 must not classify as user rejection")
	}
}

func TestClassifiersRejectPlainErrors(t *testing.T) {
	plain := errors.New("connection refused")
	if IsUserRejected(plain) || IsChainNotAdded(plain) {
		t.Fatal("plain errors must not classify")
	}
	if IsUserRejected(nil) || IsChainNotAdded(nil) {
		t.Fatal("nil must not classify")
	}
}

func TestNotifierRegistry(t *testing.T) {
	var n Notifier[int]

	got := make([]int, 0, 2)
	a := n.Add(func(v int) { got = append(got, v) })
	n.Add(func(v int) { got = append(got, v*10) })

	for _, fn := range n.Snapshot() {
		fn(3)
	}
	if len(got) != 2 {
		t.Fatalf("expected both handlers to fire, got %v", got)
	}

	n.Remove(a)
	if len(n.Snapshot()) != 1 {
		t.Fatal("remove did not release the handler")
	}
	// removing twice is a no-op
	n.Remove(a)
}
