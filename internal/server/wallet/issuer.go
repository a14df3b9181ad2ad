// Package wallet issues single-use payment addresses. Address derivation is
// owned by an external wallet service; this package only talks to it.
package wallet

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/paket-core/funder/internal/httpx"
)

// Issuer derives a fresh address on network from the extended public key.
type Issuer interface {
	IssueAddress(ctx context.Context, network, xpub string) (string, error)
}

// Network returns the wallet network name for a payment currency,
// e.g. "BTCtest" on testnet.
func Network(currency string, testnet bool) string {
	if testnet {
		return currency + "test"
	}
	return currency
}

// HTTPIssuer calls the wallet service: POST {BaseURL}/address with
// {"network","xpub"} answered by {"address"}.
type HTTPIssuer struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPIssuer(baseURL string, client *http.Client) *HTTPIssuer {
	return &HTTPIssuer{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

type issueRequest struct {
	Network string `json:"network"`
	XPub    string `json:"xpub"`
}

type issueResponse struct {
	Address string `json:"address"`
}

func (i *HTTPIssuer) IssueAddress(ctx context.Context, network, xpub string) (string, error) {
	var resp issueResponse
	if err := httpx.PostJSON(ctx, i.Client, i.BaseURL+"/address", issueRequest{Network: network, XPub: xpub}, &resp); err != nil {
		return "", err
	}
	if resp.Address == "" {
		return "", errors.New("wallet service returned an empty address")
	}
	return resp.Address, nil
}
