package blockchain

import (
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// EscrowABIJSON is the interface of the InnChain booking escrow contract.
// All monetary values cross this boundary as integers scaled by the escrow's
// internal 18-decimal unit (EscrowDecimals).
const EscrowABIJSON = `[
{"type":"function","name":"registerHotel","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"wallet","type":"address"}],"outputs":[]},
{"type":"function","name":"addRoomClass","stateMutability":"nonpayable","inputs":[{"name":"hotelId","type":"uint256"},{"name":"name","type":"string"},{"name":"pricePerNight","type":"uint256"}],"outputs":[]},
{"type":"function","name":"createBooking","stateMutability":"nonpayable","inputs":[{"name":"hotelId","type":"uint256"},{"name":"classId","type":"uint256"},{"name":"nights","type":"uint256"},{"name":"deposit","type":"uint256"}],"outputs":[]},
{"type":"function","name":"confirmCheckIn","stateMutability":"nonpayable","inputs":[{"name":"bookingId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"refundDeposit","stateMutability":"nonpayable","inputs":[{"name":"bookingId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"chargeDeposit","stateMutability":"nonpayable","inputs":[{"name":"bookingId","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"fullRefund","stateMutability":"nonpayable","inputs":[{"name":"bookingId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"getHotel","stateMutability":"view","inputs":[{"name":"hotelId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"wallet","type":"address"},{"name":"active","type":"bool"}]}]},
{"type":"function","name":"getHotelClasses","stateMutability":"view","inputs":[{"name":"hotelId","type":"uint256"}],"outputs":[{"name":"","type":"uint256[]"}]},
{"type":"function","name":"getRoomClass","stateMutability":"view","inputs":[{"name":"hotelId","type":"uint256"},{"name":"classId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"pricePerNight","type":"uint256"},{"name":"active","type":"bool"}]}]},
{"type":"function","name":"getBooking","stateMutability":"view","inputs":[{"name":"bookingId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"id","type":"uint256"},{"name":"hotelId","type":"uint256"},{"name":"roomClassId","type":"uint256"},{"name":"customer","type":"address"},{"name":"nights","type":"uint256"},{"name":"roomCost","type":"uint256"},{"name":"deposit","type":"uint256"},{"name":"checkedIn","type":"bool"},{"name":"settled","type":"bool"},{"name":"createdAt","type":"uint256"}]}]},
{"type":"function","name":"getAllHotelsWithDetails","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"wallet","type":"address"},{"name":"classes","type":"tuple[]","components":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"pricePerNight","type":"uint256"}]}]}]},
{"type":"event","name":"HotelRegistered","inputs":[{"name":"hotelId","type":"uint256","indexed":true},{"name":"wallet","type":"address","indexed":true}]},
{"type":"event","name":"RoomClassAdded","inputs":[{"name":"hotelId","type":"uint256","indexed":true},{"name":"classId","type":"uint256","indexed":true},{"name":"name","type":"string","indexed":false},{"name":"pricePerNight","type":"uint256","indexed":false}]},
{"type":"event","name":"BookingCreated","inputs":[{"name":"bookingId","type":"uint256","indexed":true},{"name":"hotelId","type":"uint256","indexed":true},{"name":"customer","type":"address","indexed":true},{"name":"roomCost","type":"uint256","indexed":false},{"name":"deposit","type":"uint256","indexed":false}]},
{"type":"event","name":"CheckInConfirmed","inputs":[{"name":"bookingId","type":"uint256","indexed":true},{"name":"roomCostReleased","type":"uint256","indexed":false}]},
{"type":"event","name":"DepositRefunded","inputs":[{"name":"bookingId","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
{"type":"event","name":"DepositCharged","inputs":[{"name":"bookingId","type":"uint256","indexed":true},{"name":"charged","type":"uint256","indexed":false},{"name":"refunded","type":"uint256","indexed":false}]},
{"type":"event","name":"FullRefunded","inputs":[{"name":"bookingId","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false}]}
]`

var (
	escrowABIOnce sync.Once
	escrowABI     abi.ABI
	escrowABIErr  error
)

// EscrowABI returns the parsed escrow contract ABI.
func EscrowABI() (abi.ABI, error) {
	escrowABIOnce.Do(func() {
		escrowABI, escrowABIErr = abi.JSON(strings.NewReader(EscrowABIJSON))
	})
	return escrowABI, escrowABIErr
}

// EscrowHotel mirrors the contract's hotel record.
type EscrowHotel struct {
	Id     *big.Int
	Name   string
	Wallet common.Address
	Active bool
}

// EscrowRoomClass mirrors the contract's room class record.
type EscrowRoomClass struct {
	Id            *big.Int
	Name          string
	PricePerNight *big.Int
	Active        bool
}

// EscrowBooking mirrors the contract's booking record.
type EscrowBooking struct {
	Id          *big.Int
	HotelId     *big.Int
	RoomClassId *big.Int
	Customer    common.Address
	Nights      *big.Int
	RoomCost    *big.Int
	Deposit     *big.Int
	CheckedIn   bool
	Settled     bool
	CreatedAt   *big.Int
}

// EscrowRoomClassSummary is the nested class entry of EscrowHotelDetails.
type EscrowRoomClassSummary struct {
	Id            *big.Int
	Name          string
	PricePerNight *big.Int
}

// EscrowHotelDetails is one element of the getAllHotelsWithDetails result.
type EscrowHotelDetails struct {
	Id      *big.Int
	Name    string
	Wallet  common.Address
	Classes []EscrowRoomClassSummary
}

// Escrow is a typed binding to the InnChain booking escrow contract. A value
// is bound to the provider it was created with; treat it as single-use and
// mint a fresh one per logical call.
type Escrow struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewEscrow binds the escrow contract at address to the given backend.
func NewEscrow(address common.Address, backend Backend) (*Escrow, error) {
	parsed, err := EscrowABI()
	if err != nil {
		return nil, err
	}
	return &Escrow{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the bound contract address.
func (e *Escrow) Address() common.Address { return e.address }

// GetHotel is a free data retrieval call binding the contract method getHotel.
func (e *Escrow) GetHotel(opts *bind.CallOpts, hotelID *big.Int) (EscrowHotel, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "getHotel", hotelID)
	if err != nil {
		return EscrowHotel{}, err
	}
	return *abi.ConvertType(out[0], new(EscrowHotel)).(*EscrowHotel), nil
}

// GetHotelClasses returns the class ids registered for a hotel.
func (e *Escrow) GetHotelClasses(opts *bind.CallOpts, hotelID *big.Int) ([]*big.Int, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "getHotelClasses", hotelID)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// GetRoomClass is a free data retrieval call binding the contract method getRoomClass.
func (e *Escrow) GetRoomClass(opts *bind.CallOpts, hotelID, classID *big.Int) (EscrowRoomClass, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "getRoomClass", hotelID, classID)
	if err != nil {
		return EscrowRoomClass{}, err
	}
	return *abi.ConvertType(out[0], new(EscrowRoomClass)).(*EscrowRoomClass), nil
}

// GetBooking is a free data retrieval call binding the contract method getBooking.
func (e *Escrow) GetBooking(opts *bind.CallOpts, bookingID *big.Int) (EscrowBooking, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "getBooking", bookingID)
	if err != nil {
		return EscrowBooking{}, err
	}
	return *abi.ConvertType(out[0], new(EscrowBooking)).(*EscrowBooking), nil
}

// GetAllHotelsWithDetails returns every hotel together with its room classes.
func (e *Escrow) GetAllHotelsWithDetails(opts *bind.CallOpts) ([]EscrowHotelDetails, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "getAllHotelsWithDetails")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]EscrowHotelDetails)).(*[]EscrowHotelDetails), nil
}

// RegisterHotel is a paid mutator transaction binding the contract method registerHotel.
func (e *Escrow) RegisterHotel(opts *bind.TransactOpts, name string, wallet common.Address) (*types.Transaction, error) {
	return e.contract.Transact(opts, "registerHotel", name, wallet)
}

// AddRoomClass is a paid mutator transaction binding the contract method addRoomClass.
func (e *Escrow) AddRoomClass(opts *bind.TransactOpts, hotelID *big.Int, name string, pricePerNight *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "addRoomClass", hotelID, name, pricePerNight)
}

// CreateBooking is a paid mutator transaction binding the contract method createBooking.
func (e *Escrow) CreateBooking(opts *bind.TransactOpts, hotelID, classID, nights, deposit *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "createBooking", hotelID, classID, nights, deposit)
}

// ConfirmCheckIn is a paid mutator transaction binding the contract method confirmCheckIn.
func (e *Escrow) ConfirmCheckIn(opts *bind.TransactOpts, bookingID *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "confirmCheckIn", bookingID)
}

// RefundDeposit is a paid mutator transaction binding the contract method refundDeposit.
func (e *Escrow) RefundDeposit(opts *bind.TransactOpts, bookingID *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "refundDeposit", bookingID)
}

// ChargeDeposit is a paid mutator transaction binding the contract method chargeDeposit.
func (e *Escrow) ChargeDeposit(opts *bind.TransactOpts, bookingID, amount *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "chargeDeposit", bookingID, amount)
}

// FullRefund is a paid mutator transaction binding the contract method fullRefund.
func (e *Escrow) FullRefund(opts *bind.TransactOpts, bookingID *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "fullRefund", bookingID)
}

// EscrowHotelRegistered represents a HotelRegistered event raised by the contract.
type EscrowHotelRegistered struct {
	HotelId *big.Int
	Wallet  common.Address
	Raw     types.Log
}

// EscrowRoomClassAdded represents a RoomClassAdded event raised by the contract.
type EscrowRoomClassAdded struct {
	HotelId       *big.Int
	ClassId       *big.Int
	Name          string
	PricePerNight *big.Int
	Raw           types.Log
}

// EscrowBookingCreated represents a BookingCreated event raised by the contract.
type EscrowBookingCreated struct {
	BookingId *big.Int
	HotelId   *big.Int
	Customer  common.Address
	RoomCost  *big.Int
	Deposit   *big.Int
	Raw       types.Log
}

// EscrowCheckInConfirmed represents a CheckInConfirmed event raised by the contract.
type EscrowCheckInConfirmed struct {
	BookingId        *big.Int
	RoomCostReleased *big.Int
	Raw              types.Log
}

// EscrowDepositRefunded represents a DepositRefunded event raised by the contract.
type EscrowDepositRefunded struct {
	BookingId *big.Int
	Amount    *big.Int
	Raw       types.Log
}

// EscrowDepositCharged represents a DepositCharged event raised by the contract.
type EscrowDepositCharged struct {
	BookingId *big.Int
	Charged   *big.Int
	Refunded  *big.Int
	Raw       types.Log
}

// EscrowFullRefunded represents a FullRefunded event raised by the contract.
type EscrowFullRefunded struct {
	BookingId *big.Int
	Amount    *big.Int
	Raw       types.Log
}

// ParseHotelRegistered parses a raw log into a HotelRegistered event.
func (e *Escrow) ParseHotelRegistered(log types.Log) (*EscrowHotelRegistered, error) {
	ev := new(EscrowHotelRegistered)
	if err := e.contract.UnpackLog(ev, "HotelRegistered", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

// ParseRoomClassAdded parses a raw log into a RoomClassAdded event.
func (e *Escrow) ParseRoomClassAdded(log types.Log) (*EscrowRoomClassAdded, error) {
	ev := new(EscrowRoomClassAdded)
	if err := e.contract.UnpackLog(ev, "RoomClassAdded", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

// ParseBookingCreated parses a raw log into a BookingCreated event.
func (e *Escrow) ParseBookingCreated(log types.Log) (*EscrowBookingCreated, error) {
	ev := new(EscrowBookingCreated)
	if err := e.contract.UnpackLog(ev, "BookingCreated", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

// ParseCheckInConfirmed parses a raw log into a CheckInConfirmed event.
func (e *Escrow) ParseCheckInConfirmed(log types.Log) (*EscrowCheckInConfirmed, error) {
	ev := new(EscrowCheckInConfirmed)
	if err := e.contract.UnpackLog(ev, "CheckInConfirmed", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

// ParseDepositRefunded parses a raw log into a DepositRefunded event.
func (e *Escrow) ParseDepositRefunded(log types.Log) (*EscrowDepositRefunded, error) {
	ev := new(EscrowDepositRefunded)
	if err := e.contract.UnpackLog(ev, "DepositRefunded", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

// ParseDepositCharged parses a raw log into a DepositCharged event.
func (e *Escrow) ParseDepositCharged(log types.Log) (*EscrowDepositCharged, error) {
	ev := new(EscrowDepositCharged)
	if err := e.contract.UnpackLog(ev, "DepositCharged", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

// ParseFullRefunded parses a raw log into a FullRefunded event.
func (e *Escrow) ParseFullRefunded(log types.Log) (*EscrowFullRefunded, error) {
	ev := new(EscrowFullRefunded)
	if err := e.contract.UnpackLog(ev, "FullRefunded", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

// WatchBookingCreated subscribes to future BookingCreated events, forwarding
// decoded payloads to sink until the subscription is released.
func (e *Escrow) WatchBookingCreated(opts *bind.WatchOpts, sink chan<- *EscrowBookingCreated) (event.Subscription, error) {
	logs, sub, err := e.contract.WatchLogs(opts, "BookingCreated")
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev := new(EscrowBookingCreated)
				if err := e.contract.UnpackLog(ev, "BookingCreated", log); err != nil {
					return err
				}
				ev.Raw = log
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// WatchCheckInConfirmed subscribes to future CheckInConfirmed events.
func (e *Escrow) WatchCheckInConfirmed(opts *bind.WatchOpts, sink chan<- *EscrowCheckInConfirmed) (event.Subscription, error) {
	logs, sub, err := e.contract.WatchLogs(opts, "CheckInConfirmed")
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev := new(EscrowCheckInConfirmed)
				if err := e.contract.UnpackLog(ev, "CheckInConfirmed", log); err != nil {
					return err
				}
				ev.Raw = log
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// WatchDepositRefunded subscribes to future DepositRefunded events.
func (e *Escrow) WatchDepositRefunded(opts *bind.WatchOpts, sink chan<- *EscrowDepositRefunded) (event.Subscription, error) {
	logs, sub, err := e.contract.WatchLogs(opts, "DepositRefunded")
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev := new(EscrowDepositRefunded)
				if err := e.contract.UnpackLog(ev, "DepositRefunded", log); err != nil {
					return err
				}
				ev.Raw = log
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// WatchDepositCharged subscribes to future DepositCharged events.
func (e *Escrow) WatchDepositCharged(opts *bind.WatchOpts, sink chan<- *EscrowDepositCharged) (event.Subscription, error) {
	logs, sub, err := e.contract.WatchLogs(opts, "DepositCharged")
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev := new(EscrowDepositCharged)
				if err := e.contract.UnpackLog(ev, "DepositCharged", log); err != nil {
					return err
				}
				ev.Raw = log
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}
