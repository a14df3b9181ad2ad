package config

import (
	"flag"
	"os"

	"github.com/paket-core/funder/internal/flagx"
)

var flagNames = []string{
	"a", "db-host", "db-port", "db-user", "db-password", "db-name", "db-sslmode",
	"xpub", "wallet-url", "testnet", "kyc-url", "monitor-interval", "log-level",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string                 gRPC bind address (e.g. ":50051")
//	-db-host string           PostgreSQL host
//	-db-port int              PostgreSQL port
//	-db-user string           PostgreSQL user
//	-db-password string       PostgreSQL password
//	-db-name string           PostgreSQL database
//	-db-sslmode string        PostgreSQL sslmode
//	-xpub string              extended public key for payment addresses
//	-wallet-url string        address issuance service URL (empty = local testnet issuer)
//	-testnet                  use testnet wallet networks (-testnet=false for mainnet)
//	-kyc-url string           KYC scoring service URL (empty = reject everyone)
//	-monitor-interval value   payment monitor period (e.g. "5m")
//	-log-level string         debug, info, warn or error
//
// Only the flags above are picked out of os.Args, so other layers may
// define their own.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagx.Names(flagNames...))

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DBHost, "db-host", config.DBHost, "database host")
	fs.IntVar(&config.DBPort, "db-port", config.DBPort, "database port")
	fs.StringVar(&config.DBUser, "db-user", config.DBUser, "database user")
	fs.StringVar(&config.DBPassword, "db-password", config.DBPassword, "database password")
	fs.StringVar(&config.DBName, "db-name", config.DBName, "database name")
	fs.StringVar(&config.DBSSLMode, "db-sslmode", config.DBSSLMode, "database sslmode")
	fs.StringVar(&config.WalletXPub, "xpub", config.WalletXPub, "wallet extended public key")
	fs.StringVar(&config.WalletServiceURL, "wallet-url", config.WalletServiceURL, "address issuance service URL")
	fs.BoolVar(&config.Testnet, "testnet", config.Testnet, "use testnet wallet networks")
	fs.StringVar(&config.KYCServiceURL, "kyc-url", config.KYCServiceURL, "KYC scoring service URL")
	fs.DurationVar(&config.MonitorInterval, "monitor-interval", config.MonitorInterval, "payment monitor interval")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
