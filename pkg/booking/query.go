package booking

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/dindasrg/chain-hotel-bookings/pkg/blockchain"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/model"
)

// AllHotels returns every registered hotel with its room classes. The listing
// is all-or-nothing: any backend failure fails the whole call.
func (c *Client) AllHotels(ctx context.Context) ([]model.Hotel, error) {
	escrow, err := c.chain.Escrow()
	if err != nil {
		return nil, err
	}
	opts, cancel := c.chain.CallOpts(ctx)
	defer cancel()

	details, err := escrow.GetAllHotelsWithDetails(opts)
	if err != nil {
		return nil, errs.Wrap(errs.ChainQueryFailed, err, "list hotels")
	}

	hotels := make([]model.Hotel, 0, len(details))
	for _, d := range details {
		classes := make([]model.RoomClass, 0, len(d.Classes))
		for _, cl := range d.Classes {
			classes = append(classes, model.RoomClass{
				ID:            cl.Id.Uint64(),
				Name:          cl.Name,
				PricePerNight: blockchain.FromBaseUnits(cl.PricePerNight, blockchain.EscrowDecimals),
				Active:        true,
			})
		}
		hotels = append(hotels, model.Hotel{
			ID:               d.Id.Uint64(),
			Name:             d.Name,
			Wallet:           d.Wallet,
			Active:           true,
			Classes:          classes,
			MinPricePerNight: minPricePerNight(classes),
		})
	}
	return hotels, nil
}

// HotelByID returns one hotel with all its room classes, active or not.
func (c *Client) HotelByID(ctx context.Context, hotelID uint64) (model.Hotel, error) {
	escrow, err := c.chain.Escrow()
	if err != nil {
		return model.Hotel{}, err
	}
	opts, cancel := c.chain.CallOpts(ctx)
	defer cancel()

	id := new(big.Int).SetUint64(hotelID)
	hotel, err := escrow.GetHotel(opts, id)
	if err != nil {
		return model.Hotel{}, errs.Wrap(errs.ChainQueryFailed, err, "get hotel")
	}
	if hotel.Id.Sign() == 0 {
		return model.Hotel{}, errs.Newf(errs.ChainQueryFailed, "hotel %d not found", hotelID)
	}

	classIDs, err := escrow.GetHotelClasses(opts, id)
	if err != nil {
		return model.Hotel{}, errs.Wrap(errs.ChainQueryFailed, err, "get hotel classes")
	}
	classes := make([]model.RoomClass, 0, len(classIDs))
	for _, classID := range classIDs {
		cl, err := escrow.GetRoomClass(opts, id, classID)
		if err != nil {
			return model.Hotel{}, errs.Wrap(errs.ChainQueryFailed, err, "get room class")
		}
		classes = append(classes, model.RoomClass{
			ID:            cl.Id.Uint64(),
			Name:          cl.Name,
			PricePerNight: blockchain.FromBaseUnits(cl.PricePerNight, blockchain.EscrowDecimals),
			Active:        cl.Active,
		})
	}

	return model.Hotel{
		ID:               hotel.Id.Uint64(),
		Name:             hotel.Name,
		Wallet:           hotel.Wallet,
		Active:           hotel.Active,
		Classes:          classes,
		MinPricePerNight: minPricePerNight(classes),
	}, nil
}

// minPricePerNight derives the cheapest nightly price across classes.
// A hotel without room classes reports "0".
func minPricePerNight(classes []model.RoomClass) string {
	min := decimal.Zero
	found := false
	for _, cl := range classes {
		price, err := decimal.NewFromString(cl.PricePerNight)
		if err != nil {
			continue
		}
		if !found || price.LessThan(min) {
			min = price
			found = true
		}
	}
	if !found {
		return "0"
	}
	return min.String()
}

// RoomClassByID returns one bookable room class. Unknown and deactivated
// classes both report RoomClassNotFound.
func (c *Client) RoomClassByID(ctx context.Context, hotelID, classID uint64) (model.RoomClass, error) {
	escrow, err := c.chain.Escrow()
	if err != nil {
		return model.RoomClass{}, err
	}
	opts, cancel := c.chain.CallOpts(ctx)
	defer cancel()

	cl, err := escrow.GetRoomClass(opts, new(big.Int).SetUint64(hotelID), new(big.Int).SetUint64(classID))
	if err != nil {
		return model.RoomClass{}, errs.Wrap(errs.ChainQueryFailed, err, "get room class")
	}
	if cl.Id.Sign() == 0 || !cl.Active {
		return model.RoomClass{}, errs.Newf(errs.RoomClassNotFound,
			"room class %d of hotel %d is not available", classID, hotelID)
	}
	return model.RoomClass{
		ID:            cl.Id.Uint64(),
		Name:          cl.Name,
		PricePerNight: blockchain.FromBaseUnits(cl.PricePerNight, blockchain.EscrowDecimals),
		Active:        cl.Active,
	}, nil
}

// BookingByID re-fetches a booking's on-chain state.
func (c *Client) BookingByID(ctx context.Context, bookingID uint64) (model.Booking, error) {
	escrow, err := c.chain.Escrow()
	if err != nil {
		return model.Booking{}, err
	}
	opts, cancel := c.chain.CallOpts(ctx)
	defer cancel()

	b, err := escrow.GetBooking(opts, new(big.Int).SetUint64(bookingID))
	if err != nil {
		return model.Booking{}, errs.Wrap(errs.ChainQueryFailed, err, "get booking")
	}
	if b.Id.Sign() == 0 {
		return model.Booking{}, errs.Newf(errs.ChainQueryFailed, "booking %d not found", bookingID)
	}
	return model.Booking{
		ID:          b.Id.Uint64(),
		HotelID:     b.HotelId.Uint64(),
		RoomClassID: b.RoomClassId.Uint64(),
		Customer:    b.Customer,
		Nights:      b.Nights.Uint64(),
		RoomCost:    blockchain.FromBaseUnits(b.RoomCost, blockchain.EscrowDecimals),
		Deposit:     blockchain.FromBaseUnits(b.Deposit, blockchain.EscrowDecimals),
		CheckedIn:   b.CheckedIn,
		Settled:     b.Settled,
		CreatedAt:   time.Unix(b.CreatedAt.Int64(), 0).UTC(),
	}, nil
}

// TokenBalance returns the token balance of account as a decimal string in
// the token's own decimals.
func (c *Client) TokenBalance(ctx context.Context, account common.Address) (string, error) {
	token, err := c.chain.Token()
	if err != nil {
		return "", err
	}
	opts, cancel := c.chain.CallOpts(ctx)
	defer cancel()

	decimals, err := token.Decimals(opts)
	if err != nil {
		return "", errs.Wrap(errs.ChainQueryFailed, err, "query token decimals")
	}
	balance, err := token.BalanceOf(opts, account)
	if err != nil {
		return "", errs.Wrap(errs.ChainQueryFailed, err, "query token balance")
	}
	return blockchain.FromBaseUnits(balance, int32(decimals)), nil
}

// TokenAllowance returns how much of owner's tokens the escrow may spend,
// as a decimal string in the token's own decimals.
func (c *Client) TokenAllowance(ctx context.Context, owner common.Address) (string, error) {
	token, err := c.chain.Token()
	if err != nil {
		return "", err
	}
	opts, cancel := c.chain.CallOpts(ctx)
	defer cancel()

	decimals, err := token.Decimals(opts)
	if err != nil {
		return "", errs.Wrap(errs.ChainQueryFailed, err, "query token decimals")
	}
	allowance, err := token.Allowance(opts, owner, c.chain.EscrowAddress())
	if err != nil {
		return "", errs.Wrap(errs.ChainQueryFailed, err, "query token allowance")
	}
	return blockchain.FromBaseUnits(allowance, int32(decimals)), nil
}
