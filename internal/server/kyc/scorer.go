// Package kyc scores identity details against an external KYC provider.
package kyc

import (
	"context"
	"net/http"
	"strings"

	"github.com/paket-core/funder/internal/httpx"
)

// Scorer runs the basic identity check and returns its numeric score.
// A score above zero means the check passed.
type Scorer interface {
	ScoreBasic(ctx context.Context, fullName, address, phoneNumber string) (int64, error)
}

// HTTPScorer calls POST {BaseURL}/basic.
type HTTPScorer struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPScorer(baseURL string, client *http.Client) *HTTPScorer {
	return &HTTPScorer{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

type basicRequest struct {
	FullName    string `json:"full_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

type basicResponse struct {
	Score int64 `json:"score"`
}

func (s *HTTPScorer) ScoreBasic(ctx context.Context, fullName, address, phoneNumber string) (int64, error) {
	var resp basicResponse
	req := basicRequest{FullName: fullName, Address: address, PhoneNumber: phoneNumber}
	if err := httpx.PostJSON(ctx, s.Client, s.BaseURL+"/basic", req, &resp); err != nil {
		return 0, err
	}
	return resp.Score, nil
}

// StaticScorer returns a fixed score. It is used when no KYC provider is
// configured.
type StaticScorer struct {
	Score int64
}

func (s StaticScorer) ScoreBasic(context.Context, string, string, string) (int64, error) {
	return s.Score, nil
}
