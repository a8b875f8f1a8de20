package booking_test

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dindasrg/chain-hotel-bookings/internal/testutil"
	"github.com/dindasrg/chain-hotel-bookings/pkg/blockchain"
	"github.com/dindasrg/chain-hotel-bookings/pkg/booking"
	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/session"
)

var (
	escrowAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

type fixture struct {
	backend *testutil.FakeBackend
	wallet  *testutil.FakeWallet
	sess    *session.Manager
	client  *booking.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		EscrowAddr: escrowAddr.Hex(),
		TokenAddr:  tokenAddr.Hex(),
	}
	require.NoError(t, cfg.Validate())

	escrowABI, err := blockchain.EscrowABI()
	require.NoError(t, err)
	tokenABI, err := blockchain.TokenABI()
	require.NoError(t, err)

	backend := testutil.NewFakeBackend(escrowABI, tokenABI)
	w := testutil.NewFakeWallet(config.LiskSepolia.ChainID)
	sess := session.NewManager(w, cfg)
	chain := blockchain.NewChainClient(backend, cfg)
	return &fixture{
		backend: backend,
		wallet:  w,
		sess:    sess,
		client:  booking.NewClient(chain, sess, cfg),
	}
}

func (f *fixture) connect(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sess.Connect(context.Background()))
}

// escrowUnits scales a decimal amount by the escrow's 18 decimals.
func escrowUnits(t *testing.T, amount string) *big.Int {
	t.Helper()
	v, err := blockchain.ToBaseUnits(amount, blockchain.EscrowDecimals)
	require.NoError(t, err)
	return v
}

// serveRoomClass installs getRoomClass returning the given price per night.
func (f *fixture) serveRoomClass(t *testing.T, price string, active bool) {
	t.Helper()
	units := escrowUnits(t, price)
	f.backend.Handle("getRoomClass", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{blockchain.EscrowRoomClass{
			Id:            args[1].(*big.Int),
			Name:          "Deluxe",
			PricePerNight: units,
			Active:        active,
		}}, nil
	})
}

func (f *fixture) serveBookingCreatedLog(t *testing.T, bookingID int64) {
	t.Helper()
	escrowABI, err := blockchain.EscrowABI()
	require.NoError(t, err)
	log := testutil.MustLog(t, escrowABI, "BookingCreated", escrowAddr,
		[]interface{}{big.NewInt(bookingID), big.NewInt(1), f.wallet.Account},
		[]interface{}{escrowUnits(t, "100"), escrowUnits(t, "20")},
	)
	f.backend.AttachLogs("createBooking", &log)
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.backend.Return("decimals", uint8(6))
	f.serveRoomClass(t, "50", true)
	f.serveBookingCreatedLog(t, 7)

	var stages []booking.Stage
	receipt, err := f.client.CreateBooking(context.Background(), 1, 2, 2, "20",
		booking.WithStageFunc(func(s booking.Stage) { stages = append(stages, s) }))
	require.NoError(t, err)

	assert.Equal(t, uint64(7), receipt.BookingID)
	assert.Equal(t, "100", receipt.RoomCost)
	assert.Equal(t, "20", receipt.Deposit)
	assert.NotEqual(t, common.Hash{}, receipt.ApproveTx)
	assert.NotEqual(t, common.Hash{}, receipt.BookingTx)

	require.Len(t, f.backend.SentTxs, 2)
	approve := f.backend.SentTxs[0]
	assert.Equal(t, "approve", approve.Method)
	assert.Equal(t, escrowAddr, approve.Args[0].(common.Address))
	// total = 50*2 + 20 = 120, scaled by the token's 6 decimals.
	assert.Equal(t, "120000000", approve.Args[1].(*big.Int).String())

	create := f.backend.SentTxs[1]
	assert.Equal(t, "createBooking", create.Method)
	assert.Equal(t, int64(2), create.Args[2].(*big.Int).Int64())
	assert.Equal(t, escrowUnits(t, "20").String(), create.Args[3].(*big.Int).String())

	assert.Equal(t, []booking.Stage{
		booking.StageAwaitingApprovalSignature,
		booking.StageApprovalPending,
		booking.StageApprovalConfirmed,
		booking.StageAwaitingBookingSignature,
		booking.StageBookingPending,
		booking.StageBookingConfirmed,
	}, stages)
	assert.Equal(t, 2, f.wallet.SignCalls, "each write consumes a fresh signer")
}

func TestCreateBookingApprovalRejected(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.backend.Return("decimals", uint8(6))
	f.serveRoomClass(t, "50", true)
	f.wallet.RejectSign = true

	var stages []booking.Stage
	_, err := f.client.CreateBooking(context.Background(), 1, 2, 2, "20",
		booking.WithStageFunc(func(s booking.Stage) { stages = append(stages, s) }))
	assert.True(t, errs.IsKind(err, errs.UserRejected), "got %v", err)
	assert.Empty(t, f.backend.SentTxs, "nothing may reach the chain after a rejection")
	assert.Equal(t, booking.StageAborted, stages[len(stages)-1])
}

func TestCreateBookingInactiveClass(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.serveRoomClass(t, "50", false)

	_, err := f.client.CreateBooking(context.Background(), 1, 2, 2, "20")
	assert.True(t, errs.IsKind(err, errs.RoomClassNotFound), "got %v", err)
	assert.Zero(t, f.wallet.SignCalls, "no signature may be requested for an unavailable class")
	assert.Empty(t, f.backend.SentTxs)
}

func TestCreateBookingRequiresConnection(t *testing.T) {
	f := newFixture(t)
	f.backend.Return("decimals", uint8(6))
	f.serveRoomClass(t, "50", true)

	_, err := f.client.CreateBooking(context.Background(), 1, 2, 2, "20")
	assert.True(t, errs.IsKind(err, errs.SignerUnavailable), "got %v", err)
	assert.Empty(t, f.backend.SentTxs)
}

func TestCreateBookingInvalidArgs(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	_, err := f.client.CreateBooking(context.Background(), 1, 2, 0, "20")
	require.Error(t, err)
	_, err = f.client.CreateBooking(context.Background(), 1, 2, 2, "twenty")
	require.Error(t, err)
	assert.Zero(t, f.wallet.SignCalls)
}

// dataErr mimics geth's rpc error carrying ABI-encoded revert data.
type dataErr struct {
	msg  string
	data interface{}
}

func (e *dataErr) Error() string          { return e.msg }
func (e *dataErr) ErrorData() interface{} { return e.data }

func revertErr(t *testing.T, reason string) error {
	t.Helper()
	strType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: strType}}.Pack(reason)
	require.NoError(t, err)
	return &dataErr{msg: "execution reverted", data: "0x08c379a0" + hex.EncodeToString(packed)}
}

func TestCreateBookingRevertsWithReason(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.backend.Return("decimals", uint8(6))
	f.serveRoomClass(t, "50", true)
	f.backend.SendErr("createBooking", revertErr(t, "Deposit below hotel minimum"))

	_, err := f.client.CreateBooking(context.Background(), 1, 2, 2, "20")
	require.True(t, errs.IsKind(err, errs.ContractRevert), "got %v", err)
	reason, ok := errs.RevertReason(err)
	require.True(t, ok)
	assert.Equal(t, "Deposit below hotel minimum", reason)
	// The approval still landed; it is not rolled back.
	require.Len(t, f.backend.SentTxs, 1)
	assert.Equal(t, "approve", f.backend.SentTxs[0].Method)
}

func TestCreateBookingWithoutEvent(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.backend.Return("decimals", uint8(6))
	f.serveRoomClass(t, "50", true)
	// No BookingCreated log attached to the mined receipt.

	_, err := f.client.CreateBooking(context.Background(), 1, 2, 2, "20")
	assert.True(t, errs.IsKind(err, errs.BookingIDNotResolved), "got %v", err)
}

func TestConfirmCheckIn(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	txHash, err := f.client.ConfirmCheckIn(context.Background(), 7)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, txHash)
	require.Len(t, f.backend.SentTxs, 1)
	sent := f.backend.SentTxs[0]
	assert.Equal(t, "confirmCheckIn", sent.Method)
	assert.Equal(t, int64(7), sent.Args[0].(*big.Int).Int64())
}

func TestConfirmCheckInRevertVerbatim(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.backend.SendErr("confirmCheckIn", revertErr(t, "Only hotel wallet may confirm"))

	_, err := f.client.ConfirmCheckIn(context.Background(), 7)
	require.True(t, errs.IsKind(err, errs.ContractRevert), "got %v", err)
	reason, _ := errs.RevertReason(err)
	assert.Equal(t, "Only hotel wallet may confirm", reason)
}

func TestChargeDepositScalesAmount(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	_, err := f.client.ChargeDeposit(context.Background(), 7, "30")
	require.NoError(t, err)
	sent := f.backend.SentTxs[0]
	assert.Equal(t, "chargeDeposit", sent.Method)
	assert.Equal(t, escrowUnits(t, "30").String(), sent.Args[1].(*big.Int).String())
}

func TestWriteFlowsRequireConnection(t *testing.T) {
	f := newFixture(t)

	for name, call := range map[string]func() error{
		"confirmCheckIn": func() error { _, err := f.client.ConfirmCheckIn(context.Background(), 1); return err },
		"refundDeposit":  func() error { _, err := f.client.RefundDeposit(context.Background(), 1); return err },
		"fullRefund":     func() error { _, err := f.client.FullRefund(context.Background(), 1); return err },
		"registerHotel": func() error {
			_, err := f.client.RegisterHotel(context.Background(), "Grand Lisk", f.wallet.Account)
			return err
		},
		"addRoomClass": func() error {
			_, err := f.client.AddRoomClass(context.Background(), 1, "Deluxe", "50")
			return err
		},
	} {
		err := call()
		assert.True(t, errs.IsKind(err, errs.SignerUnavailable), "%s: got %v", name, err)
	}
	assert.Empty(t, f.backend.SentTxs)
}

func TestRegisterHotelAndAddRoomClass(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	hotelWallet := common.HexToAddress("0x3333333333333333333333333333333333333333")
	_, err := f.client.RegisterHotel(context.Background(), "Grand Lisk", hotelWallet)
	require.NoError(t, err)
	_, err = f.client.AddRoomClass(context.Background(), 1, "Deluxe", "50")
	require.NoError(t, err)

	require.Len(t, f.backend.SentTxs, 2)
	assert.Equal(t, "registerHotel", f.backend.SentTxs[0].Method)
	assert.Equal(t, hotelWallet, f.backend.SentTxs[0].Args[1].(common.Address))
	assert.Equal(t, "addRoomClass", f.backend.SentTxs[1].Method)
	assert.Equal(t, escrowUnits(t, "50").String(), f.backend.SentTxs[1].Args[2].(*big.Int).String())
}
