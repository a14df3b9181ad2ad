// Package chain reads address balances from public block explorers.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"github.com/paket-core/funder/internal/httpx"
	"github.com/paket-core/funder/internal/server/models"
)

// BalanceChecker reports the balance of address in the smallest unit of
// currency (satoshi, wei).
type BalanceChecker interface {
	Balance(ctx context.Context, currency models.PaymentCurrency, address string) (*big.Int, error)
}

// Explorer checks BTC balances against a btc.com style API and ETH balances
// against an etherscan style API.
type Explorer struct {
	BTCURL          string
	ETHURL          string
	EtherscanAPIKey string
	Client          *http.Client
}

func NewExplorer(btcURL, ethURL, etherscanAPIKey string, client *http.Client) *Explorer {
	return &Explorer{
		BTCURL:          strings.TrimRight(btcURL, "/"),
		ETHURL:          ethURL,
		EtherscanAPIKey: etherscanAPIKey,
		Client:          client,
	}
}

func (e *Explorer) Balance(ctx context.Context, currency models.PaymentCurrency, address string) (*big.Int, error) {
	switch currency {
	case models.PaymentBTC:
		return e.btcBalance(ctx, address)
	case models.PaymentETH:
		return e.ethBalance(ctx, address)
	default:
		return nil, fmt.Errorf("unsupported currency %q", currency)
	}
}

type btcResponse struct {
	ErrNo  int    `json:"err_no"`
	ErrMsg string `json:"err_msg"`
	Data   *struct {
		Balance big.Int `json:"balance"`
	} `json:"data"`
}

func (e *Explorer) btcBalance(ctx context.Context, address string) (*big.Int, error) {
	var resp btcResponse
	if err := httpx.GetJSON(ctx, e.Client, e.BTCURL+"/address/"+url.PathEscape(address), &resp); err != nil {
		return nil, err
	}
	if resp.ErrNo != 0 {
		return nil, fmt.Errorf("btc explorer error %d: %s", resp.ErrNo, resp.ErrMsg)
	}
	// Unknown addresses come back with null data.
	if resp.Data == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(&resp.Data.Balance), nil
}

type ethResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func (e *Explorer) ethBalance(ctx context.Context, address string) (*big.Int, error) {
	u, err := url.Parse(e.ETHURL)
	if err != nil {
		return nil, fmt.Errorf("eth explorer url: %w", err)
	}
	q := u.Query()
	q.Set("module", "account")
	q.Set("action", "balance")
	q.Set("address", address)
	q.Set("tag", "latest")
	if e.EtherscanAPIKey != "" {
		q.Set("apikey", e.EtherscanAPIKey)
	}
	u.RawQuery = q.Encode()

	var resp ethResponse
	if err := httpx.GetJSON(ctx, e.Client, u.String(), &resp); err != nil {
		return nil, err
	}
	if resp.Message != "OK" {
		return nil, fmt.Errorf("eth explorer error: %s (%s)", resp.Message, resp.Result)
	}
	balance, ok := new(big.Int).SetString(resp.Result, 10)
	if !ok {
		return nil, fmt.Errorf("eth explorer returned invalid balance %q", resp.Result)
	}
	return balance, nil
}
