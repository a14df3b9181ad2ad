package config

import (
	"encoding/json"
	"os"

	"github.com/paket-core/funder/internal/flagx"
	"github.com/paket-core/funder/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Empty fields
// keep whatever value the previous layer set.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DBHost           string         `json:"db_host"`
	DBPort           int            `json:"db_port"`
	DBUser           string         `json:"db_user"`
	DBPassword       string         `json:"db_password"`
	DBName           string         `json:"db_name"`
	DBSSLMode        string         `json:"db_sslmode"`
	WalletXPub       string         `json:"wallet_xpub"`
	WalletServiceURL string         `json:"wallet_service_url"`
	Testnet          *bool          `json:"testnet"`
	KYCServiceURL    string         `json:"kyc_service_url"`
	BTCExplorerURL   string         `json:"btc_explorer_url"`
	ETHExplorerURL   string         `json:"eth_explorer_url"`
	EtherscanAPIKey  string         `json:"etherscan_api_key"`
	MonitorInterval  timex.Duration `json:"monitor_interval"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	LogLevel         string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config into config.
// No flag means no file. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DBHost, c.DBHost)
	if c.DBPort != 0 {
		config.DBPort = c.DBPort
	}
	setString(&config.DBUser, c.DBUser)
	setString(&config.DBPassword, c.DBPassword)
	setString(&config.DBName, c.DBName)
	setString(&config.DBSSLMode, c.DBSSLMode)
	setString(&config.WalletXPub, c.WalletXPub)
	setString(&config.WalletServiceURL, c.WalletServiceURL)
	if c.Testnet != nil {
		config.Testnet = *c.Testnet
	}
	setString(&config.KYCServiceURL, c.KYCServiceURL)
	setString(&config.BTCExplorerURL, c.BTCExplorerURL)
	setString(&config.ETHExplorerURL, c.ETHExplorerURL)
	setString(&config.EtherscanAPIKey, c.EtherscanAPIKey)
	if c.MonitorInterval.Duration != 0 {
		config.MonitorInterval = c.MonitorInterval.Duration
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
