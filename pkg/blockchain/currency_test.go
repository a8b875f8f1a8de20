package blockchain

import (
	"math/big"
	"testing"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     string
	}{
		{"120", 6, "120000000"},
		{"12.5", 6, "12500000"},
		{"0.000001", 6, "1"},
		{"0.0000019", 6, "1"}, // truncated, not rounded
		{"0", 6, "0"},
		{"120", 18, "120000000000000000000"},
		{"0.123456789012345678", 18, "123456789012345678"},
	}
	for _, tc := range tests {
		got, err := ToBaseUnits(tc.amount, tc.decimals)
		if err != nil {
			t.Fatalf("ToBaseUnits(%q, %d): %v", tc.amount, tc.decimals, err)
		}
		if got.String() != tc.want {
			t.Errorf("ToBaseUnits(%q, %d) = %s, want %s", tc.amount, tc.decimals, got, tc.want)
		}
	}
}

func TestToBaseUnitsRejectsBadInput(t *testing.T) {
	if _, err := ToBaseUnits("not-a-number", 6); err == nil {
		t.Fatal("expected error for malformed amount")
	}
	if _, err := ToBaseUnits("-1", 6); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestFromBaseUnits(t *testing.T) {
	tests := []struct {
		v        *big.Int
		decimals int32
		want     string
	}{
		{big.NewInt(120000000), 6, "120"},
		{big.NewInt(12500000), 6, "12.5"},
		{big.NewInt(1), 6, "0.000001"},
		{big.NewInt(0), 6, "0"},
		{nil, 6, "0"},
	}
	for _, tc := range tests {
		if got := FromBaseUnits(tc.v, tc.decimals); got != tc.want {
			t.Errorf("FromBaseUnits(%v, %d) = %s, want %s", tc.v, tc.decimals, got, tc.want)
		}
	}
}

func TestBaseUnitsRoundTrip(t *testing.T) {
	for _, amount := range []string{"1", "0.5", "99.999999", "120"} {
		raw, err := ToBaseUnits(amount, 6)
		if err != nil {
			t.Fatalf("ToBaseUnits(%q): %v", amount, err)
		}
		if got := FromBaseUnits(raw, 6); got != amount {
			t.Errorf("round trip %q = %q", amount, got)
		}
	}
}
