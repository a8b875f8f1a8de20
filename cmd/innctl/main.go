// Command innctl is a small operator CLI for the hotel booking escrow.
// Configuration comes from the environment / .env file; see config.FromEnv.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dindasrg/chain-hotel-bookings/pkg/booking"
	"github.com/dindasrg/chain-hotel-bookings/pkg/config"
	"github.com/dindasrg/chain-hotel-bookings/pkg/sdk"
)

const usage = `usage: innctl <command> [flags]

read commands:
  hotels                               list all hotels with room classes
  hotel        -id N                   show one hotel
  room-class   -hotel N -class N       show one room class
  booking      -id N                   show one booking
  balance      [-account 0x..]         token balance
  allowance    [-account 0x..]         escrow allowance

write commands (need PRIVATE_KEY):
  book           -hotel N -class N -nights N -deposit AMOUNT
  checkin        -id N
  refund-deposit -id N
  charge-deposit -id N -amount AMOUNT
  full-refund    -id N
  register-hotel -name NAME -wallet 0x..
  add-room-class -hotel N -name NAME -price AMOUNT
`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalln("config:", err)
	}
	client, err := sdk.New(cfg)
	if err != nil {
		log.Fatalln("init:", err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := run(ctx, client, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, client *sdk.Core, command string, args []string) error {
	switch command {
	case "hotels":
		hotels, err := client.Bookings().AllHotels(ctx)
		if err != nil {
			return err
		}
		return printJSON(hotels)

	case "hotel":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		id := fs.Uint64("id", 0, "hotel id")
		fs.Parse(args)
		hotel, err := client.Bookings().HotelByID(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(hotel)

	case "room-class":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		hotelID := fs.Uint64("hotel", 0, "hotel id")
		classID := fs.Uint64("class", 0, "room class id")
		fs.Parse(args)
		class, err := client.Bookings().RoomClassByID(ctx, *hotelID, *classID)
		if err != nil {
			return err
		}
		return printJSON(class)

	case "booking":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		id := fs.Uint64("id", 0, "booking id")
		fs.Parse(args)
		b, err := client.Bookings().BookingByID(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(b)

	case "balance", "allowance":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		account := fs.String("account", "", "account address (default: connected wallet)")
		fs.Parse(args)
		addr, err := resolveAccount(ctx, client, *account)
		if err != nil {
			return err
		}
		var amount string
		if command == "balance" {
			amount, err = client.Bookings().TokenBalance(ctx, addr)
		} else {
			amount, err = client.Bookings().TokenAllowance(ctx, addr)
		}
		if err != nil {
			return err
		}
		fmt.Println(amount)
		return nil

	case "book":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		hotelID := fs.Uint64("hotel", 0, "hotel id")
		classID := fs.Uint64("class", 0, "room class id")
		nights := fs.Uint64("nights", 1, "number of nights")
		deposit := fs.String("deposit", "0", "deposit amount")
		fs.Parse(args)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		receipt, err := client.Bookings().CreateBooking(ctx, *hotelID, *classID, *nights, *deposit,
			booking.WithStageFunc(func(s booking.Stage) { log.Println("stage:", s) }))
		if err != nil {
			return err
		}
		return printJSON(receipt)

	case "checkin", "refund-deposit", "full-refund":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		id := fs.Uint64("id", 0, "booking id")
		fs.Parse(args)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		var txHash common.Hash
		var err error
		switch command {
		case "checkin":
			txHash, err = client.Bookings().ConfirmCheckIn(ctx, *id)
		case "refund-deposit":
			txHash, err = client.Bookings().RefundDeposit(ctx, *id)
		case "full-refund":
			txHash, err = client.Bookings().FullRefund(ctx, *id)
		}
		if err != nil {
			return err
		}
		fmt.Println("tx:", txHash)
		return nil

	case "charge-deposit":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		id := fs.Uint64("id", 0, "booking id")
		amount := fs.String("amount", "", "amount to charge from the deposit")
		fs.Parse(args)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		txHash, err := client.Bookings().ChargeDeposit(ctx, *id, *amount)
		if err != nil {
			return err
		}
		fmt.Println("tx:", txHash)
		return nil

	case "register-hotel":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		name := fs.String("name", "", "hotel name")
		walletAddr := fs.String("wallet", "", "payout wallet address")
		fs.Parse(args)
		if !common.IsHexAddress(*walletAddr) {
			return fmt.Errorf("invalid wallet address %q", *walletAddr)
		}
		if err := client.Connect(ctx); err != nil {
			return err
		}
		txHash, err := client.Bookings().RegisterHotel(ctx, *name, common.HexToAddress(*walletAddr))
		if err != nil {
			return err
		}
		fmt.Println("tx:", txHash)
		return nil

	case "add-room-class":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		hotelID := fs.Uint64("hotel", 0, "hotel id")
		name := fs.String("name", "", "room class name")
		price := fs.String("price", "", "price per night")
		fs.Parse(args)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		txHash, err := client.Bookings().AddRoomClass(ctx, *hotelID, *name, *price)
		if err != nil {
			return err
		}
		fmt.Println("tx:", txHash)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func resolveAccount(ctx context.Context, client *sdk.Core, account string) (common.Address, error) {
	if account != "" {
		if !common.IsHexAddress(account) {
			return common.Address{}, fmt.Errorf("invalid account address %q", account)
		}
		return common.HexToAddress(account), nil
	}
	if err := client.Connect(ctx); err != nil {
		return common.Address{}, err
	}
	return client.Session().Account(), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
