package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // hash160 is what BTC addresses use
	"golang.org/x/crypto/sha3"
)

// HashIssuer stands in for the wallet service in development and tests.
// It returns unique address-shaped identifiers: "0x"+20 keccak bytes on ETH
// networks and a hex hash160 on BTC networks. They are derived from the
// network, the xpub and a random nonce, and are NOT spendable.
type HashIssuer struct {
	newNonce func() uuid.UUID
}

func NewHashIssuer() *HashIssuer {
	return &HashIssuer{newNonce: uuid.New}
}

func (i *HashIssuer) IssueAddress(_ context.Context, network, xpub string) (string, error) {
	nonce := i.newNonce()
	seed := make([]byte, 0, len(network)+len(xpub)+len(nonce))
	seed = append(seed, network...)
	seed = append(seed, xpub...)
	seed = append(seed, nonce[:]...)

	if strings.HasPrefix(strings.ToUpper(network), "ETH") {
		h := sha3.NewLegacyKeccak256()
		h.Write(seed)
		return "0x" + hex.EncodeToString(h.Sum(nil)[12:]), nil
	}

	sum := sha256.Sum256(seed)
	r := ripemd160.New()
	r.Write(sum[:])
	return hex.EncodeToString(r.Sum(nil)), nil
}
