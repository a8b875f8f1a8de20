package testutil

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MustLog fabricates a contract log for the named event. Indexed values are
// given in declaration order, followed by the non-indexed values.
func MustLog(t *testing.T, contractABI abi.ABI, eventName string, addr common.Address, indexed []interface{}, nonIndexed []interface{}) types.Log {
	t.Helper()
	ev, ok := contractABI.Events[eventName]
	if !ok {
		t.Fatalf("event %s not in ABI", eventName)
	}
	topics := []common.Hash{ev.ID}
	if len(indexed) > 0 {
		query := make([][]interface{}, len(indexed))
		for i, v := range indexed {
			query[i] = []interface{}{v}
		}
		made, err := abi.MakeTopics(query...)
		if err != nil {
			t.Fatalf("make topics for %s: %v", eventName, err)
		}
		for _, pos := range made {
			topics = append(topics, pos[0])
		}
	}
	data, err := ev.Inputs.NonIndexed().Pack(nonIndexed...)
	if err != nil {
		t.Fatalf("pack %s data: %v", eventName, err)
	}
	return types.Log{
		Address: addr,
		Topics:  topics,
		Data:    data,
	}
}
