// Package model defines the domain types the SDK exposes to applications.
// Monetary amounts are decimal strings in human units ("12.5"), already
// converted from the escrow's fixed 18-decimal on-chain representation.
package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RoomClass is one bookable room category of a hotel.
type RoomClass struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	PricePerNight string `json:"price_per_night"`
	Active        bool   `json:"active"`
}

// Hotel is a registered hotel together with its room classes.
// MinPricePerNight is derived: the cheapest class price, "0" for a hotel
// without room classes.
type Hotel struct {
	ID               uint64         `json:"id"`
	Name             string         `json:"name"`
	Wallet           common.Address `json:"wallet"`
	Active           bool           `json:"active"`
	Classes          []RoomClass    `json:"classes"`
	MinPricePerNight string         `json:"min_price_per_night"`
}

// Booking is the on-chain state of one escrow booking.
type Booking struct {
	ID          uint64         `json:"id"`
	HotelID     uint64         `json:"hotel_id"`
	RoomClassID uint64         `json:"room_class_id"`
	Customer    common.Address `json:"customer"`
	Nights      uint64         `json:"nights"`
	RoomCost    string         `json:"room_cost"`
	Deposit     string         `json:"deposit"`
	CheckedIn   bool           `json:"checked_in"`
	Settled     bool           `json:"settled"`
	CreatedAt   time.Time      `json:"created_at"`
}

// BookingReceipt summarizes a completed booking flow: the resolved booking id
// plus the hashes of the two transactions the flow submitted. ApproveTx is the
// zero hash when no approval was needed.
type BookingReceipt struct {
	BookingID uint64      `json:"booking_id"`
	ApproveTx common.Hash `json:"approve_tx"`
	BookingTx common.Hash `json:"booking_tx"`
	RoomCost  string      `json:"room_cost"`
	Deposit   string      `json:"deposit"`
}

// BookingCreatedEvent is the decoded BookingCreated contract event.
type BookingCreatedEvent struct {
	BookingID uint64         `json:"booking_id"`
	HotelID   uint64         `json:"hotel_id"`
	Customer  common.Address `json:"customer"`
	RoomCost  string         `json:"room_cost"`
	Deposit   string         `json:"deposit"`
	TxHash    common.Hash    `json:"tx_hash"`
}

// CheckInConfirmedEvent is the decoded CheckInConfirmed contract event.
type CheckInConfirmedEvent struct {
	BookingID        uint64      `json:"booking_id"`
	RoomCostReleased string      `json:"room_cost_released"`
	TxHash           common.Hash `json:"tx_hash"`
}

// DepositRefundedEvent is the decoded DepositRefunded contract event.
type DepositRefundedEvent struct {
	BookingID uint64      `json:"booking_id"`
	Amount    string      `json:"amount"`
	TxHash    common.Hash `json:"tx_hash"`
}

// DepositChargedEvent is the decoded DepositCharged contract event.
type DepositChargedEvent struct {
	BookingID uint64      `json:"booking_id"`
	Charged   string      `json:"charged"`
	Refunded  string      `json:"refunded"`
	TxHash    common.Hash `json:"tx_hash"`
}
