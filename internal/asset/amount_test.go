package asset

import (
	"errors"
	"math/big"
	"testing"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantWei string
		wantErr error
	}{
		{name: "whole_ether", in: "1", wantWei: "1000000000000000000"},
		{name: "fractional", in: "0.9949", wantWei: "994900000000000000"},
		{name: "single_wei", in: "0.000000000000000001", wantWei: "1"},
		{name: "zero", in: "0", wantWei: "0"},
		{name: "sub_wei_rejected", in: "0.0000000000000000001", wantErr: ErrTooPrecise},
		{name: "negative_rejected", in: "-1", wantErr: ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEther(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.WeiString() != tt.wantWei {
				t.Errorf("wei = %s, want %s", got.WeiString(), tt.wantWei)
			}
		})
	}

	if _, err := ParseEther("not a number"); err == nil {
		t.Error("garbage input must fail")
	}
}

func TestNewAmount(t *testing.T) {
	if _, err := NewAmount(nil); !errors.Is(err, ErrNilRaw) {
		t.Errorf("nil raw: err = %v, want ErrNilRaw", err)
	}
	if _, err := NewAmount(big.NewInt(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative raw: err = %v, want ErrNegativeAmount", err)
	}

	raw := big.NewInt(42)
	a, err := NewAmount(raw)
	if err != nil {
		t.Fatal(err)
	}
	// The stored value is a copy, not an alias.
	raw.SetInt64(0)
	if a.Raw().Int64() != 42 {
		t.Error("amount must not alias the caller's big.Int")
	}
}

func TestAmount_EtherString(t *testing.T) {
	wei, _ := new(big.Int).SetString("994900000000000000", 10)
	a, err := NewAmount(wei)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.EtherString(); got != "0.9949" {
		t.Errorf("ether string = %s, want 0.9949", got)
	}

	if got := Zero().EtherString(); got != "0" {
		t.Errorf("zero ether string = %s, want 0", got)
	}
}

func TestFormatWei(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := FormatWei(wei); got != "1.5" {
		t.Errorf("FormatWei = %s, want 1.5", got)
	}
	if got := FormatWei(nil); got != "0" {
		t.Errorf("FormatWei(nil) = %s, want 0", got)
	}
}
