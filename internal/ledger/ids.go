package ledger

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for new records. Implementations must
// never return the same id twice for the same prefix.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator prefixes random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(prefix string) string {
	return prefix + uuid.NewString()
}

// ColorPicker returns a display color for a new account.
type ColorPicker func() string

// RandomColor returns a random "#rrggbb" color.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}

const (
	accountPrefix     = "acc_"
	transactionPrefix = "tx_"
	debtPrefix        = "debt_"
)
