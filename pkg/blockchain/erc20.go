package blockchain

import (
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TokenABIJSON is the slice of the ERC-20 interface the escrow flows need.
const TokenABIJSON = `[
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
{"type":"event","name":"Approval","inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

var (
	tokenABIOnce sync.Once
	tokenABI     abi.ABI
	tokenABIErr  error
)

// TokenABI returns the parsed ERC-20 ABI.
func TokenABI() (abi.ABI, error) {
	tokenABIOnce.Do(func() {
		tokenABI, tokenABIErr = abi.JSON(strings.NewReader(TokenABIJSON))
	})
	return tokenABI, tokenABIErr
}

// Token is a typed binding to the payment token contract.
type Token struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewToken binds the ERC-20 token at address to the given backend.
func NewToken(address common.Address, backend Backend) (*Token, error) {
	parsed, err := TokenABI()
	if err != nil {
		return nil, err
	}
	return &Token{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the bound token address.
func (t *Token) Address() common.Address { return t.address }

// Allowance is a free data retrieval call binding the contract method allowance.
func (t *Token) Allowance(opts *bind.CallOpts, owner, spender common.Address) (*big.Int, error) {
	var out []interface{}
	err := t.contract.Call(opts, &out, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// BalanceOf is a free data retrieval call binding the contract method balanceOf.
func (t *Token) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	err := t.contract.Call(opts, &out, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Decimals is a free data retrieval call binding the contract method decimals.
func (t *Token) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	err := t.contract.Call(opts, &out, "decimals")
	if err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// Approve is a paid mutator transaction binding the contract method approve.
func (t *Token) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "approve", spender, amount)
}
