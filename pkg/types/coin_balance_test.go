package types

import "testing"

func TestCoinBalanceScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want CoinBalance
	}{
		{name: "string", src: "150", want: 150},
		{name: "bytes", src: []byte("42"), want: 42},
		{name: "int64", src: int64(7), want: 7},
		{name: "padded", src: " 9 ", want: 9},
		{name: "empty", src: "", want: 0},
		{name: "nil", src: nil, want: 0},
	}
	for _, tt := range tests {
		var c CoinBalance
		if err := c.Scan(tt.src); err != nil {
			t.Fatalf("%s: Scan: %v", tt.name, err)
		}
		if c != tt.want {
			t.Fatalf("%s: got %d want %d", tt.name, c, tt.want)
		}
	}
}

func TestCoinBalanceScanRejectsGarbage(t *testing.T) {
	var c CoinBalance
	if err := c.Scan("not-a-number"); err == nil {
		t.Fatal("expected error for non-numeric text")
	}
	if err := c.Scan(3.14); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestCoinBalanceValueIsText(t *testing.T) {
	v, err := CoinBalance(100).Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "100" {
		t.Fatalf("expected text encoding, got %v (%T)", v, v)
	}
}
