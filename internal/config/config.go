// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	Treasury   TreasuryConfig   `mapstructure:"treasury"`
	Withdrawal WithdrawalConfig `mapstructure:"withdrawal"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// EthereumConfig holds node connection configuration.
type EthereumConfig struct {
	// Endpoints is the ordered RPC failover list; the first entry is preferred.
	Endpoints []string `mapstructure:"endpoints"`
	ChainID   uint64   `mapstructure:"chain_id"`
	// PrivateKey is the hex-encoded treasury signing key. Env only, never file.
	PrivateKey  string        `mapstructure:"private_key"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// TreasuryConfig holds transfer engine and fee policy settings.
type TreasuryConfig struct {
	MinTipGwei          int64         `mapstructure:"min_tip_gwei"`
	DefaultGasLimit     uint64        `mapstructure:"default_gas_limit"`
	SafetyReserveWei    string        `mapstructure:"safety_reserve_wei"`
	DustThresholdWei    string        `mapstructure:"dust_threshold_wei"`
	ConfirmTimeout      time.Duration `mapstructure:"confirm_timeout"`
	ConfirmPollInterval time.Duration `mapstructure:"confirm_poll_interval"`
	// BalanceToleranceWei bounds the divergence allowed between two
	// independent balance reads in the verified variant.
	BalanceToleranceWei string `mapstructure:"balance_tolerance_wei"`
}

// SafetyReserve returns the safety reserve as wei.
func (c *TreasuryConfig) SafetyReserve() *big.Int {
	return mustWei(c.SafetyReserveWei)
}

// DustThreshold returns the dust threshold as wei.
func (c *TreasuryConfig) DustThreshold() *big.Int {
	return mustWei(c.DustThresholdWei)
}

// BalanceTolerance returns the cross-validation tolerance as wei.
func (c *TreasuryConfig) BalanceTolerance() *big.Int {
	return mustWei(c.BalanceToleranceWei)
}

// WithdrawalConfig holds strategy dispatcher settings.
type WithdrawalConfig struct {
	// SplitDestinations are the fixed targets of the split variant.
	SplitDestinations []string `mapstructure:"split_destinations"`
	// RedirectAddress is the fixed internal target of the internal variant.
	RedirectAddress  string `mapstructure:"redirect_address"`
	RedirectGasLimit uint64 `mapstructure:"redirect_gas_limit"`
	// GateProbability is the fraction of gated withdrawals declined when no
	// approval service is configured.
	GateProbability float64 `mapstructure:"gate_probability"`
	GateSeed        int64   `mapstructure:"gate_seed"`
	// ApprovalURL, when set, routes gated withdrawals through an external
	// approval service instead of the probabilistic gate.
	ApprovalURL    string `mapstructure:"approval_url"`
	ExpressTipGwei int64  `mapstructure:"express_tip_gwei"`
	RatePerMinute  int    `mapstructure:"rate_per_minute"`
}

// GatewayConfig holds the HTTP request surface settings.
type GatewayConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("TRS")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "TRS_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "TRS_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "TRS_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.endpoints", "TRS_ETH_ENDPOINTS", "ETH_ENDPOINTS")
	v.BindEnv("ethereum.chain_id", "TRS_ETH_CHAIN_ID", "ETH_CHAIN_ID")
	v.BindEnv("ethereum.private_key", "TRS_TREASURY_KEY", "TREASURY_PRIVATE_KEY")

	// Treasury
	v.BindEnv("treasury.min_tip_gwei", "TRS_MIN_TIP_GWEI")
	v.BindEnv("treasury.safety_reserve_wei", "TRS_SAFETY_RESERVE_WEI")
	v.BindEnv("treasury.dust_threshold_wei", "TRS_DUST_THRESHOLD_WEI")

	// Withdrawal
	v.BindEnv("withdrawal.redirect_address", "TRS_REDIRECT_ADDRESS")
	v.BindEnv("withdrawal.approval_url", "TRS_APPROVAL_URL")

	// Gateway
	v.BindEnv("gateway.port", "TRS_GATEWAY_PORT", "PORT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "TRS_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "TRS_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "TRS_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "treasury-bot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.dial_timeout", "10s")

	// Treasury defaults
	v.SetDefault("treasury.min_tip_gwei", 5)
	v.SetDefault("treasury.default_gas_limit", 21000)
	v.SetDefault("treasury.safety_reserve_wei", "3000000000000000") // 0.003 ether
	v.SetDefault("treasury.dust_threshold_wei", "100000000000000")  // 0.0001 ether
	v.SetDefault("treasury.confirm_timeout", "3m")
	v.SetDefault("treasury.confirm_poll_interval", "3s")
	v.SetDefault("treasury.balance_tolerance_wei", "1000000000000") // 0.000001 ether

	// Withdrawal defaults
	v.SetDefault("withdrawal.redirect_gas_limit", 50000)
	v.SetDefault("withdrawal.gate_probability", 0.25)
	v.SetDefault("withdrawal.gate_seed", 0) // 0 = time-seeded
	v.SetDefault("withdrawal.express_tip_gwei", 100)
	v.SetDefault("withdrawal.rate_per_minute", 30)

	// Gateway defaults
	v.SetDefault("gateway.port", 8080)
	v.SetDefault("gateway.read_timeout", "10s")
	v.SetDefault("gateway.write_timeout", "30s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "treasury-bot")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Ethereum.Endpoints) == 0 {
		return fmt.Errorf("ethereum.endpoints cannot be empty")
	}
	if c.Ethereum.PrivateKey == "" {
		return fmt.Errorf("ethereum.private_key is required (set TRS_TREASURY_KEY)")
	}
	if c.Ethereum.ChainID == 0 {
		return fmt.Errorf("ethereum.chain_id is required")
	}
	if _, ok := new(big.Int).SetString(c.Treasury.SafetyReserveWei, 10); !ok {
		return fmt.Errorf("invalid treasury.safety_reserve_wei: %s", c.Treasury.SafetyReserveWei)
	}
	if _, ok := new(big.Int).SetString(c.Treasury.DustThresholdWei, 10); !ok {
		return fmt.Errorf("invalid treasury.dust_threshold_wei: %s", c.Treasury.DustThresholdWei)
	}
	if _, ok := new(big.Int).SetString(c.Treasury.BalanceToleranceWei, 10); !ok {
		return fmt.Errorf("invalid treasury.balance_tolerance_wei: %s", c.Treasury.BalanceToleranceWei)
	}
	if c.Withdrawal.RedirectAddress != "" && !common.IsHexAddress(c.Withdrawal.RedirectAddress) {
		return fmt.Errorf("invalid withdrawal.redirect_address: %s", c.Withdrawal.RedirectAddress)
	}
	for _, dest := range c.Withdrawal.SplitDestinations {
		if !common.IsHexAddress(dest) {
			return fmt.Errorf("invalid withdrawal.split_destinations entry: %s", dest)
		}
	}
	if c.Withdrawal.GateProbability < 0 || c.Withdrawal.GateProbability > 1 {
		return fmt.Errorf("withdrawal.gate_probability must be in [0,1]")
	}
	return nil
}

// mustWei parses a base-10 wei string already checked by Validate.
func mustWei(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(fmt.Sprintf("config: unvalidated wei quantity %q", s))
	}
	return n
}
