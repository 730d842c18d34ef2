// Package idgen issues record identifiers. Services receive a Generator so
// tests can swap in a deterministic Sequence.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	accountPrefix     = "ACC"
	transactionPrefix = "TXN"
	walletPrefix      = "WAL"
	accountDigits     = 10
)

// Generator produces identifiers for ledger records.
type Generator interface {
	NewID() string
	AccountNumber() string
	TransactionID() string
	WalletID() string
}

// Random draws identifiers from crypto/rand and uuid v4.
type Random struct{}

// NewRandom returns the production generator.
func NewRandom() Random { return Random{} }

func (Random) NewID() string { return uuid.NewString() }

func (Random) AccountNumber() string {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(accountDigits), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		panic(fmt.Sprintf("idgen: read random: %v", err))
	}
	return fmt.Sprintf("%s%0*d", accountPrefix, accountDigits, n)
}

func (Random) TransactionID() string { return transactionPrefix + randomHex(8) }

func (Random) WalletID() string { return walletPrefix + randomHex(8) }

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("idgen: read random: %v", err))
	}
	return strings.ToUpper(hex.EncodeToString(b))
}

// Sequence hands out predictable, strictly increasing identifiers. Safe for
// concurrent use.
type Sequence struct {
	n atomic.Uint64
}

// NewSequence returns a generator starting at 1.
func NewSequence() *Sequence { return &Sequence{} }

func (s *Sequence) next() uint64 { return s.n.Add(1) }

func (s *Sequence) NewID() string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.next())
}

func (s *Sequence) AccountNumber() string {
	return fmt.Sprintf("%s%0*d", accountPrefix, accountDigits, s.next())
}

func (s *Sequence) TransactionID() string {
	return fmt.Sprintf("%s%016X", transactionPrefix, s.next())
}

func (s *Sequence) WalletID() string {
	return fmt.Sprintf("%s%016X", walletPrefix, s.next())
}
