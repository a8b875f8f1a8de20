// Package testutil provides in-memory fakes of the chain backend and the
// wallet provider so flows can be tested without a node.
package testutil

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SentTx records one transaction submitted through the fake backend.
type SentTx struct {
	Method string
	Args   []interface{}
	Tx     *types.Transaction
}

// FakeBackend implements the blockchain.Backend surface against in-memory
// handlers. Register the contract ABIs once, then attach per-method handlers;
// calls and submitted transactions are decoded against the registered ABIs.
type FakeBackend struct {
	mu sync.Mutex

	abis     []abi.ABI
	handlers map[string]func(args []interface{}) ([]interface{}, error)

	// Calls lists view method names in invocation order.
	Calls []string
	// SentTxs lists decoded mutator transactions in submission order.
	SentTxs []SentTx

	sendErrs    map[string]error
	failMethods map[string]bool
	receiptLogs map[string][]*types.Log
	receipts    map[common.Hash]*types.Receipt

	// NotFoundPolls makes TransactionReceipt report ethereum.NotFound that
	// many times before serving stored receipts.
	NotFoundPolls int

	nonce uint64
	subs  []*fakeLogSub
}

// NewFakeBackend returns a backend that understands the given ABIs.
func NewFakeBackend(abis ...abi.ABI) *FakeBackend {
	return &FakeBackend{
		abis:        abis,
		handlers:    make(map[string]func([]interface{}) ([]interface{}, error)),
		sendErrs:    make(map[string]error),
		failMethods: make(map[string]bool),
		receiptLogs: make(map[string][]*types.Log),
		receipts:    make(map[common.Hash]*types.Receipt),
	}
}

// Handle installs a handler invoked with the unpacked call arguments; its
// return values are packed as the method's outputs.
func (b *FakeBackend) Handle(method string, fn func(args []interface{}) ([]interface{}, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method] = fn
}

// Return installs a handler that ignores arguments and always returns values.
func (b *FakeBackend) Return(method string, values ...interface{}) {
	b.Handle(method, func([]interface{}) ([]interface{}, error) {
		return values, nil
	})
}

// ReturnErr makes a view method fail with err.
func (b *FakeBackend) ReturnErr(method string, err error) {
	b.Handle(method, func([]interface{}) ([]interface{}, error) {
		return nil, err
	})
}

// SendErr makes SendTransaction fail for transactions calling method.
func (b *FakeBackend) SendErr(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sendErrs[method] = err
}

// FailMethod makes mined receipts for method carry a failed status.
func (b *FakeBackend) FailMethod(method string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failMethods[method] = true
}

// AttachLogs adds logs to receipts of transactions calling method.
func (b *FakeBackend) AttachLogs(method string, logs ...*types.Log) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receiptLogs[method] = append(b.receiptLogs[method], logs...)
}

func (b *FakeBackend) findMethod(selector []byte) (abi.Method, bool) {
	for _, a := range b.abis {
		for _, m := range a.Methods {
			if string(m.ID) == string(selector) {
				return m, true
			}
		}
	}
	return abi.Method{}, false
}

// CodeAt reports non-empty code so bindings treat the address as deployed.
func (b *FakeBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *FakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *FakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if len(call.Data) < 4 {
		return nil, fmt.Errorf("call data too short: %s", hex.EncodeToString(call.Data))
	}
	method, ok := b.findMethod(call.Data[:4])
	if !ok {
		return nil, fmt.Errorf("unknown method selector %s", hex.EncodeToString(call.Data[:4]))
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpack %s args: %w", method.Name, err)
	}

	b.mu.Lock()
	b.Calls = append(b.Calls, method.Name)
	fn := b.handlers[method.Name]
	b.mu.Unlock()

	if fn == nil {
		return nil, fmt.Errorf("no handler for method %s", method.Name)
	}
	out, err := fn(args)
	if err != nil {
		return nil, err
	}
	packed, err := method.Outputs.Pack(out...)
	if err != nil {
		return nil, fmt.Errorf("pack %s outputs: %w", method.Name, err)
	}
	return packed, nil
}

func (b *FakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{
		Number:  big.NewInt(1),
		BaseFee: big.NewInt(1_000_000_000),
	}, nil
}

func (b *FakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.nonce
	b.nonce++
	return n, nil
}

func (b *FakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *FakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *FakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 210_000, nil
}

func (b *FakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	data := tx.Data()
	if len(data) < 4 {
		return fmt.Errorf("tx data too short")
	}
	method, ok := b.findMethod(data[:4])
	if !ok {
		return fmt.Errorf("unknown method selector %s", hex.EncodeToString(data[:4]))
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return fmt.Errorf("unpack %s args: %w", method.Name, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.sendErrs[method.Name]; err != nil {
		return err
	}
	b.SentTxs = append(b.SentTxs, SentTx{Method: method.Name, Args: args, Tx: tx})

	status := types.ReceiptStatusSuccessful
	if b.failMethods[method.Name] {
		status = types.ReceiptStatusFailed
	}
	b.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(1),
		Logs:        b.receiptLogs[method.Name],
	}
	return nil
}

func (b *FakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.NotFoundPolls > 0 {
		b.NotFoundPolls--
		return nil, ethereum.NotFound
	}
	r, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (b *FakeBackend) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

type fakeLogSub struct {
	query ethereum.FilterQuery
	ch    chan<- types.Log
	errc  chan error
	once  sync.Once
	done  func()
}

func (s *fakeLogSub) Unsubscribe()      { s.once.Do(s.done) }
func (s *fakeLogSub) Err() <-chan error { return s.errc }

func (b *FakeBackend) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &fakeLogSub{query: query, ch: ch, errc: make(chan error, 1)}
	sub.done = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s == sub {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
	}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// EmitLog delivers a log to every live subscription whose topic filter
// matches the log's first topic.
func (b *FakeBackend) EmitLog(log types.Log) {
	b.mu.Lock()
	subs := make([]*fakeLogSub, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		if matchesTopic(s.query, log) {
			s.ch <- log
		}
	}
}

// FailSubscriptions pushes err into every live log subscription.
func (b *FakeBackend) FailSubscriptions(err error) {
	b.mu.Lock()
	subs := make([]*fakeLogSub, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		select {
		case s.errc <- err:
		default:
		}
	}
}

// SubscriptionCount reports the number of live log subscriptions.
func (b *FakeBackend) SubscriptionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func matchesTopic(q ethereum.FilterQuery, log types.Log) bool {
	if len(q.Topics) == 0 || len(q.Topics[0]) == 0 {
		return true
	}
	if len(log.Topics) == 0 {
		return false
	}
	for _, t := range q.Topics[0] {
		if t == log.Topics[0] {
			return true
		}
	}
	return false
}
