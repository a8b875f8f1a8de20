package booking

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dindasrg/chain-hotel-bookings/pkg/blockchain"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/model"
)

// Stage identifies where a booking flow currently is. Stages advance strictly
// forward; a flow that fails reports StageAborted and stops.
type Stage int

const (
	StageIdle Stage = iota
	StageAwaitingApprovalSignature
	StageApprovalPending
	StageApprovalConfirmed
	StageAwaitingBookingSignature
	StageBookingPending
	StageBookingConfirmed
	StageAborted
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAwaitingApprovalSignature:
		return "awaiting_approval_signature"
	case StageApprovalPending:
		return "approval_pending"
	case StageApprovalConfirmed:
		return "approval_confirmed"
	case StageAwaitingBookingSignature:
		return "awaiting_booking_signature"
	case StageBookingPending:
		return "booking_pending"
	case StageBookingConfirmed:
		return "booking_confirmed"
	case StageAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type flowConfig struct {
	stageFunc func(Stage)
}

// FlowOption customizes a booking flow invocation.
type FlowOption func(*flowConfig)

// WithStageFunc installs a callback invoked on every stage transition. The
// callback runs synchronously on the flow's goroutine and must return fast.
func WithStageFunc(fn func(Stage)) FlowOption {
	return func(c *flowConfig) { c.stageFunc = fn }
}

func (c *flowConfig) stage(s Stage) {
	if c.stageFunc != nil {
		c.stageFunc(s)
	}
}

// CreateBooking runs the two-transaction booking flow: approve the escrow to
// pull the total, wait for the approval to mine, then create the booking and
// wait again. The room price is re-queried at call time; deposit is a decimal
// string in token units. The booking id is extracted from the BookingCreated
// event of the mined booking transaction.
//
// The booking transaction is never submitted before the approval confirmed.
// Nothing is rolled back on failure: a confirmed approval whose booking step
// failed stays on chain, and the caller decides whether to resume.
func (c *Client) CreateBooking(ctx context.Context, hotelID, classID, nights uint64, deposit string, opts ...FlowOption) (model.BookingReceipt, error) {
	flow := &flowConfig{}
	for _, opt := range opts {
		opt(flow)
	}
	fail := func(err error) (model.BookingReceipt, error) {
		flow.stage(StageAborted)
		return model.BookingReceipt{}, err
	}

	if nights == 0 {
		return fail(fmt.Errorf("nights must be positive"))
	}
	depositDec, err := decimal.NewFromString(deposit)
	if err != nil || depositDec.IsNegative() {
		return fail(fmt.Errorf("invalid deposit amount %q", deposit))
	}

	class, err := c.RoomClassByID(ctx, hotelID, classID)
	if err != nil {
		return fail(err)
	}
	price, err := decimal.NewFromString(class.PricePerNight)
	if err != nil {
		return fail(fmt.Errorf("parse price %q: %w", class.PricePerNight, err))
	}
	total := price.Mul(decimal.NewFromUint64(nights)).Add(depositDec)

	token, err := c.chain.Token()
	if err != nil {
		return fail(err)
	}
	viewOpts, cancel := c.chain.CallOpts(ctx)
	tokenDecimals, err := token.Decimals(viewOpts)
	cancel()
	if err != nil {
		return fail(errs.Wrap(errs.ChainQueryFailed, err, "query token decimals"))
	}
	approveAmount, err := blockchain.ToBaseUnits(total.String(), int32(tokenDecimals))
	if err != nil {
		return fail(err)
	}

	zap.L().Info("starting booking flow",
		zap.Uint64("hotel_id", hotelID),
		zap.Uint64("class_id", classID),
		zap.Uint64("nights", nights),
		zap.String("total", total.String()))

	// Step 1: approve the escrow for the full amount.
	flow.stage(StageAwaitingApprovalSignature)
	signer, err := c.sess.Signer(ctx)
	if err != nil {
		return fail(err)
	}
	approveTx, err := token.Approve(signer, c.chain.EscrowAddress(), approveAmount)
	if err != nil {
		return fail(blockchain.ClassifyWriteError("approve", err))
	}
	flow.stage(StageApprovalPending)
	if _, err := c.waitMined(ctx, approveTx.Hash()); err != nil {
		return fail(err)
	}
	flow.stage(StageApprovalConfirmed)

	// Step 2: create the booking. A fresh signer is requested because the
	// previous one was consumed by the approval.
	flow.stage(StageAwaitingBookingSignature)
	signer, err = c.sess.Signer(ctx)
	if err != nil {
		return fail(err)
	}
	escrow, err := c.chain.Escrow()
	if err != nil {
		return fail(err)
	}
	depositUnits, err := blockchain.ToBaseUnits(deposit, blockchain.EscrowDecimals)
	if err != nil {
		return fail(err)
	}
	bookingTx, err := escrow.CreateBooking(signer,
		new(big.Int).SetUint64(hotelID),
		new(big.Int).SetUint64(classID),
		new(big.Int).SetUint64(nights),
		depositUnits)
	if err != nil {
		return fail(blockchain.ClassifyWriteError("createBooking", err))
	}
	flow.stage(StageBookingPending)
	receipt, err := c.waitMined(ctx, bookingTx.Hash())
	if err != nil {
		return fail(err)
	}

	created, err := extractBookingCreated(escrow, receipt)
	if err != nil {
		return fail(err)
	}
	flow.stage(StageBookingConfirmed)

	zap.L().Info("booking created",
		zap.Uint64("booking_id", created.BookingId.Uint64()),
		zap.String("tx", bookingTx.Hash().Hex()))

	return model.BookingReceipt{
		BookingID: created.BookingId.Uint64(),
		ApproveTx: approveTx.Hash(),
		BookingTx: bookingTx.Hash(),
		RoomCost:  blockchain.FromBaseUnits(created.RoomCost, blockchain.EscrowDecimals),
		Deposit:   blockchain.FromBaseUnits(created.Deposit, blockchain.EscrowDecimals),
	}, nil
}

// extractBookingCreated finds the BookingCreated event in a mined receipt.
func extractBookingCreated(escrow *blockchain.Escrow, receipt *types.Receipt) (*blockchain.EscrowBookingCreated, error) {
	for _, log := range receipt.Logs {
		if log == nil {
			continue
		}
		ev, err := escrow.ParseBookingCreated(*log)
		if err == nil {
			return ev, nil
		}
	}
	return nil, errs.Newf(errs.BookingIDNotResolved,
		"transaction %s mined without a BookingCreated event", receipt.TxHash)
}

// writeEscrow runs one signed escrow write and waits for it to mine.
func (c *Client) writeEscrow(ctx context.Context, op string, send func(*blockchain.Escrow, *bind.TransactOpts) (*types.Transaction, error)) (common.Hash, error) {
	escrow, err := c.chain.Escrow()
	if err != nil {
		return common.Hash{}, err
	}
	signer, err := c.sess.Signer(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	tx, err := send(escrow, signer)
	if err != nil {
		return common.Hash{}, blockchain.ClassifyWriteError(op, err)
	}
	if _, err := c.waitMined(ctx, tx.Hash()); err != nil {
		return common.Hash{}, err
	}
	zap.L().Info("escrow write mined", zap.String("op", op), zap.String("tx", tx.Hash().Hex()))
	return tx.Hash(), nil
}

// ConfirmCheckIn marks the booking as checked in, releasing the room cost to
// the hotel.
func (c *Client) ConfirmCheckIn(ctx context.Context, bookingID uint64) (common.Hash, error) {
	return c.writeEscrow(ctx, "confirmCheckIn", func(e *blockchain.Escrow, opts *bind.TransactOpts) (*types.Transaction, error) {
		return e.ConfirmCheckIn(opts, new(big.Int).SetUint64(bookingID))
	})
}

// RefundDeposit returns the full deposit to the customer after checkout.
func (c *Client) RefundDeposit(ctx context.Context, bookingID uint64) (common.Hash, error) {
	return c.writeEscrow(ctx, "refundDeposit", func(e *blockchain.Escrow, opts *bind.TransactOpts) (*types.Transaction, error) {
		return e.RefundDeposit(opts, new(big.Int).SetUint64(bookingID))
	})
}

// ChargeDeposit keeps amount (a decimal string in token units) from the
// deposit and refunds the remainder.
func (c *Client) ChargeDeposit(ctx context.Context, bookingID uint64, amount string) (common.Hash, error) {
	units, err := blockchain.ToBaseUnits(amount, blockchain.EscrowDecimals)
	if err != nil {
		return common.Hash{}, err
	}
	return c.writeEscrow(ctx, "chargeDeposit", func(e *blockchain.Escrow, opts *bind.TransactOpts) (*types.Transaction, error) {
		return e.ChargeDeposit(opts, new(big.Int).SetUint64(bookingID), units)
	})
}

// FullRefund cancels the booking, returning both room cost and deposit.
func (c *Client) FullRefund(ctx context.Context, bookingID uint64) (common.Hash, error) {
	return c.writeEscrow(ctx, "fullRefund", func(e *blockchain.Escrow, opts *bind.TransactOpts) (*types.Transaction, error) {
		return e.FullRefund(opts, new(big.Int).SetUint64(bookingID))
	})
}

// RegisterHotel registers a new hotel paying out to wallet.
func (c *Client) RegisterHotel(ctx context.Context, name string, wallet common.Address) (common.Hash, error) {
	return c.writeEscrow(ctx, "registerHotel", func(e *blockchain.Escrow, opts *bind.TransactOpts) (*types.Transaction, error) {
		return e.RegisterHotel(opts, name, wallet)
	})
}

// AddRoomClass adds a bookable room class to a hotel. The price is a decimal
// string in token units per night.
func (c *Client) AddRoomClass(ctx context.Context, hotelID uint64, name string, pricePerNight string) (common.Hash, error) {
	units, err := blockchain.ToBaseUnits(pricePerNight, blockchain.EscrowDecimals)
	if err != nil {
		return common.Hash{}, err
	}
	return c.writeEscrow(ctx, "addRoomClass", func(e *blockchain.Escrow, opts *bind.TransactOpts) (*types.Transaction, error) {
		return e.AddRoomClass(opts, new(big.Int).SetUint64(hotelID), name, units)
	})
}
