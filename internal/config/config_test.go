package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Ethereum: EthereumConfig{
			Endpoints:  []string{"http://localhost:8545"},
			ChainID:    1337,
			PrivateKey: "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		},
		Treasury: TreasuryConfig{
			SafetyReserveWei:    "3000000000000000",
			DustThresholdWei:    "100000000000000",
			BalanceToleranceWei: "1000000000000",
		},
		Withdrawal: WithdrawalConfig{
			GateProbability: 0.25,
		},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "no_endpoints",
			mutate:  func(c *Config) { c.Ethereum.Endpoints = nil },
			wantMsg: "endpoints",
		},
		{
			name:    "no_private_key",
			mutate:  func(c *Config) { c.Ethereum.PrivateKey = "" },
			wantMsg: "private_key",
		},
		{
			name:    "zero_chain_id",
			mutate:  func(c *Config) { c.Ethereum.ChainID = 0 },
			wantMsg: "chain_id",
		},
		{
			name:    "bad_reserve",
			mutate:  func(c *Config) { c.Treasury.SafetyReserveWei = "0.003" },
			wantMsg: "safety_reserve_wei",
		},
		{
			name:    "bad_redirect_address",
			mutate:  func(c *Config) { c.Withdrawal.RedirectAddress = "nowhere" },
			wantMsg: "redirect_address",
		},
		{
			name:    "bad_split_destination",
			mutate:  func(c *Config) { c.Withdrawal.SplitDestinations = []string{"0x123"} },
			wantMsg: "split_destinations",
		},
		{
			name:    "gate_probability_out_of_range",
			mutate:  func(c *Config) { c.Withdrawal.GateProbability = 1.5 },
			wantMsg: "gate_probability",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantMsg)
			}
		})
	}
}

func TestTreasuryConfig_WeiHelpers(t *testing.T) {
	cfg := validConfig()

	if got := cfg.Treasury.SafetyReserve().String(); got != "3000000000000000" {
		t.Errorf("safety reserve = %s", got)
	}
	if got := cfg.Treasury.DustThreshold().String(); got != "100000000000000" {
		t.Errorf("dust threshold = %s", got)
	}
	if got := cfg.Treasury.BalanceTolerance().String(); got != "1000000000000" {
		t.Errorf("balance tolerance = %s", got)
	}
}
