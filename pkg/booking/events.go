package booking

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dindasrg/chain-hotel-bookings/pkg/blockchain"
	"github.com/dindasrg/chain-hotel-bookings/pkg/errs"
	"github.com/dindasrg/chain-hotel-bookings/pkg/model"
)

// eventBuffer is the sink depth per subscription; a handler that lags behind
// more than this backpressures the watcher.
const eventBuffer = 16

// Subscriptions manages live contract event subscriptions. Each subscription
// owns one dispatch goroutine delivering decoded events to its handler in
// arrival order.
type Subscriptions struct {
	chain *blockchain.ChainClient

	mu   sync.Mutex
	subs map[string]*subscription
}

type subscription struct {
	sub  event.Subscription
	quit chan struct{}
	done chan struct{}
	stop sync.Once
}

// NewSubscriptions builds an empty subscription manager.
func NewSubscriptions(chain *blockchain.ChainClient) *Subscriptions {
	return &Subscriptions{chain: chain, subs: make(map[string]*subscription)}
}

// register wires a watcher subscription to a dispatch loop and returns the
// subscription token.
func (s *Subscriptions) register(esub event.Subscription, dispatch func(quit <-chan struct{})) string {
	token := uuid.NewString()
	entry := &subscription{
		sub:  esub,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.subs[token] = entry
	s.mu.Unlock()

	go func() {
		defer close(entry.done)
		dispatch(entry.quit)
		s.mu.Lock()
		delete(s.subs, token)
		s.mu.Unlock()
	}()
	return token
}

// Unsubscribe releases the subscription identified by token and blocks until
// its dispatch goroutine has exited, so no handler runs after it returns.
// Unknown and already-released tokens are no-ops. Must not be called from
// inside the subscription's own handler.
func (s *Subscriptions) Unsubscribe(token string) {
	s.mu.Lock()
	entry, ok := s.subs[token]
	s.mu.Unlock()
	if !ok {
		return
	}
	entry.stop.Do(func() {
		entry.sub.Unsubscribe()
		close(entry.quit)
	})
	<-entry.done
}

// Close releases every live subscription.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	tokens := make([]string, 0, len(s.subs))
	for token := range s.subs {
		tokens = append(tokens, token)
	}
	s.mu.Unlock()
	for _, token := range tokens {
		s.Unsubscribe(token)
	}
}

// SubscribeBookingCreated delivers every future BookingCreated event to
// handler and returns the subscription token.
func (s *Subscriptions) SubscribeBookingCreated(handler func(model.BookingCreatedEvent)) (string, error) {
	escrow, err := s.chain.Escrow()
	if err != nil {
		return "", err
	}
	sink := make(chan *blockchain.EscrowBookingCreated, eventBuffer)
	esub, err := escrow.WatchBookingCreated(nil, sink)
	if err != nil {
		return "", errs.Wrap(errs.ChainQueryFailed, err, "subscribe BookingCreated")
	}
	return s.register(esub, func(quit <-chan struct{}) {
		for {
			select {
			case ev := <-sink:
				handler(model.BookingCreatedEvent{
					BookingID: ev.BookingId.Uint64(),
					HotelID:   ev.HotelId.Uint64(),
					Customer:  ev.Customer,
					RoomCost:  blockchain.FromBaseUnits(ev.RoomCost, blockchain.EscrowDecimals),
					Deposit:   blockchain.FromBaseUnits(ev.Deposit, blockchain.EscrowDecimals),
					TxHash:    ev.Raw.TxHash,
				})
			case err := <-esub.Err():
				logWatcherExit("BookingCreated", err)
				return
			case <-quit:
				return
			}
		}
	}), nil
}

// SubscribeCheckInConfirmed delivers every future CheckInConfirmed event to
// handler and returns the subscription token.
func (s *Subscriptions) SubscribeCheckInConfirmed(handler func(model.CheckInConfirmedEvent)) (string, error) {
	escrow, err := s.chain.Escrow()
	if err != nil {
		return "", err
	}
	sink := make(chan *blockchain.EscrowCheckInConfirmed, eventBuffer)
	esub, err := escrow.WatchCheckInConfirmed(nil, sink)
	if err != nil {
		return "", errs.Wrap(errs.ChainQueryFailed, err, "subscribe CheckInConfirmed")
	}
	return s.register(esub, func(quit <-chan struct{}) {
		for {
			select {
			case ev := <-sink:
				handler(model.CheckInConfirmedEvent{
					BookingID:        ev.BookingId.Uint64(),
					RoomCostReleased: blockchain.FromBaseUnits(ev.RoomCostReleased, blockchain.EscrowDecimals),
					TxHash:           ev.Raw.TxHash,
				})
			case err := <-esub.Err():
				logWatcherExit("CheckInConfirmed", err)
				return
			case <-quit:
				return
			}
		}
	}), nil
}

// SubscribeDepositRefunded delivers every future DepositRefunded event to
// handler and returns the subscription token.
func (s *Subscriptions) SubscribeDepositRefunded(handler func(model.DepositRefundedEvent)) (string, error) {
	escrow, err := s.chain.Escrow()
	if err != nil {
		return "", err
	}
	sink := make(chan *blockchain.EscrowDepositRefunded, eventBuffer)
	esub, err := escrow.WatchDepositRefunded(nil, sink)
	if err != nil {
		return "", errs.Wrap(errs.ChainQueryFailed, err, "subscribe DepositRefunded")
	}
	return s.register(esub, func(quit <-chan struct{}) {
		for {
			select {
			case ev := <-sink:
				handler(model.DepositRefundedEvent{
					BookingID: ev.BookingId.Uint64(),
					Amount:    blockchain.FromBaseUnits(ev.Amount, blockchain.EscrowDecimals),
					TxHash:    ev.Raw.TxHash,
				})
			case err := <-esub.Err():
				logWatcherExit("DepositRefunded", err)
				return
			case <-quit:
				return
			}
		}
	}), nil
}

// SubscribeDepositCharged delivers every future DepositCharged event to
// handler and returns the subscription token.
func (s *Subscriptions) SubscribeDepositCharged(handler func(model.DepositChargedEvent)) (string, error) {
	escrow, err := s.chain.Escrow()
	if err != nil {
		return "", err
	}
	sink := make(chan *blockchain.EscrowDepositCharged, eventBuffer)
	esub, err := escrow.WatchDepositCharged(nil, sink)
	if err != nil {
		return "", errs.Wrap(errs.ChainQueryFailed, err, "subscribe DepositCharged")
	}
	return s.register(esub, func(quit <-chan struct{}) {
		for {
			select {
			case ev := <-sink:
				handler(model.DepositChargedEvent{
					BookingID: ev.BookingId.Uint64(),
					Charged:   blockchain.FromBaseUnits(ev.Charged, blockchain.EscrowDecimals),
					Refunded:  blockchain.FromBaseUnits(ev.Refunded, blockchain.EscrowDecimals),
					TxHash:    ev.Raw.TxHash,
				})
			case err := <-esub.Err():
				logWatcherExit("DepositCharged", err)
				return
			case <-quit:
				return
			}
		}
	}), nil
}

func logWatcherExit(name string, err error) {
	if err != nil {
		zap.L().Warn("event watcher stopped", zap.String("event", name), zap.Error(err))
	}
}
