// Package config handles configuration for the funder server: defaults,
// JSON overlay, PAKET_* environment variables and command-line flags,
// applied in that order.
package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds runtime settings for the funder server.
//
// The allowance figures and the expenditure window are fixed business
// constants; they live here so that tests and tools can pass them explicitly,
// but no file, env var or flag overrides them.
type Config struct {
	EndpointAddrGRPC string `env:"PAKET_GRPC_ADDR"`

	DBHost     string `env:"PAKET_DB_HOST"`
	DBPort     int    `env:"PAKET_DB_PORT"`
	DBUser     string `env:"PAKET_DB_USER"`
	DBPassword string `env:"PAKET_DB_PASSWORD"`
	DBName     string `env:"PAKET_DB_NAME"`
	DBSSLMode  string `env:"PAKET_DB_SSLMODE"`

	BasicMonthlyAllowance   int64         `env:"-"`
	MinimumMonthlyAllowance int64         `env:"-"`
	ExpenditureWindow       time.Duration `env:"-"`

	// WalletXPub is the extended public key payment addresses are derived from.
	WalletXPub       string `env:"PAKET_WALLET_XPUB"`
	WalletServiceURL string `env:"PAKET_WALLET_URL"`
	// Testnet selects the "<currency>test" wallet networks.
	Testnet       bool   `env:"PAKET_TESTNET"`
	KYCServiceURL string `env:"PAKET_KYC_URL"`

	BTCExplorerURL  string `env:"PAKET_BTC_EXPLORER_URL"`
	ETHExplorerURL  string `env:"PAKET_ETH_EXPLORER_URL"`
	EtherscanAPIKey string `env:"PAKET_ETHERSCAN_API_KEY"`

	MonitorInterval time.Duration `env:"PAKET_MONITOR_INTERVAL"`
	RequestTimeout  time.Duration `env:"PAKET_REQUEST_TIMEOUT"`
	LogLevel        string        `env:"PAKET_LOG_LEVEL"`
}

// Fixed business constants.
const (
	DefaultBasicMonthlyAllowance   int64 = 10000
	DefaultMinimumMonthlyAllowance int64 = 5000
	DefaultExpenditureWindow             = 30 * 24 * time.Hour
)

// LoadDefaults populates Config with development defaults.
// NOTE: the database password is empty and the wallet xpub is a testnet key.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DBHost = "127.0.0.1"
	c.DBPort = 5432
	c.DBUser = "paket"
	c.DBPassword = ""
	c.DBName = "paket"
	c.DBSSLMode = "disable"
	c.BasicMonthlyAllowance = DefaultBasicMonthlyAllowance
	c.MinimumMonthlyAllowance = DefaultMinimumMonthlyAllowance
	c.ExpenditureWindow = DefaultExpenditureWindow
	c.WalletXPub = "tpubD6NzVbkrYhZ4XMSG7EWChwJXwfByid9TdZRVaej1rpDTHV3WamyuApceF5DDZXetx8kbH82NouoazYqPeCEZWWeXHZ1do5LBCe5xMcZYeGe"
	c.WalletServiceURL = ""
	c.Testnet = true
	c.KYCServiceURL = ""
	c.BTCExplorerURL = "https://tchain.api.btc.com/v3"
	c.ETHExplorerURL = "https://api-ropsten.etherscan.io/api"
	c.EtherscanAPIKey = ""
	c.MonitorInterval = 5 * time.Minute
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// DatabaseDSN renders the connection settings as a pgx URL.
func (c *Config) DatabaseDSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	if c.DBSSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.DBSSLMode}}.Encode()
	}
	return u.String()
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
