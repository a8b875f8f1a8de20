// Package errs defines the classified error type every SDK operation surfaces
// its failures through. Callers branch on the Kind instead of pattern-matching
// error strings; the one exception is ContractRevert, whose verbatim revert
// reason is preserved precisely so that callers can pattern-match it.
package errs

import (
	"errors"
	"fmt"
)

// Kind discriminates SDK failures.
type Kind int

const (
	// Unknown marks failures outside the classified taxonomy.
	Unknown Kind = iota
	// WalletUnavailable means no wallet provider is configured or reachable.
	WalletUnavailable
	// UserRejected means the user declined a wallet prompt (connection or
	// signature). The caller may retry the whole flow from the start.
	UserRejected
	// ChainSwitchFailed means the wallet refused to switch to the target chain.
	ChainSwitchFailed
	// ChainAddFailed means the wallet refused to add the target chain.
	ChainAddFailed
	// SignerUnavailable means a write operation was attempted while the
	// session is disconnected. The wallet is never contacted in this case.
	SignerUnavailable
	// ChainQueryFailed means a read call failed. Safe to retry; no partial
	// state is produced.
	ChainQueryFailed
	// RoomClassNotFound means a room class lookup yielded no match. Distinct
	// from a transport failure.
	RoomClassNotFound
	// BookingIDNotResolved means a booking transaction mined successfully but
	// its logs carried no creation event to extract the booking id from.
	BookingIDNotResolved
	// ContractRevert means the chain rejected a write call. The verbatim
	// revert reason is available via RevertReason.
	ContractRevert
)

// String returns a short stable name for the kind.
func (k Kind) String() string {
	switch k {
	case WalletUnavailable:
		return "wallet unavailable"
	case UserRejected:
		return "user rejected"
	case ChainSwitchFailed:
		return "chain switch failed"
	case ChainAddFailed:
		return "chain add failed"
	case SignerUnavailable:
		return "signer unavailable"
	case ChainQueryFailed:
		return "chain query failed"
	case RoomClassNotFound:
		return "room class not found"
	case BookingIDNotResolved:
		return "booking id not resolved"
	case ContractRevert:
		return "contract revert"
	default:
		return "unknown"
	}
}

// Error is the classified error produced at the SDK boundaries.
type Error struct {
	Kind Kind
	Msg  string
	// Reason carries the verbatim contract revert reason for ContractRevert.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Reason != "" {
		s += ": " + e.Reason
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error with the given kind and message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf returns a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a classified error wrapping cause. A nil cause yields nil.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Revert returns a ContractRevert error carrying the verbatim reason string.
func Revert(reason string, cause error) error {
	return &Error{Kind: ContractRevert, Reason: reason, Err: cause}
}

// KindOf returns the kind of the first classified error in err's chain, or
// Unknown when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind reports whether err's chain contains a classified error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// RevertReason extracts the verbatim revert reason from err's chain.
// The second return is false when err carries no ContractRevert.
func RevertReason(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == ContractRevert {
		return e.Reason, true
	}
	return "", false
}
