// Package idgen allocates booking identifiers.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// StrategyShort produces human-friendly codes such as WK-7Q2M9X.
	StrategyShort = "short"
	// StrategyUUID produces prefix-qualified random UUIDs.
	StrategyUUID = "uuid"

	shortAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	shortLength   = 6
)

// Generator returns a new identifier on every call.
type Generator func() string

// New returns the generator for the named strategy.  Unknown strategies
// are an error so a typo in configuration fails at startup.
func New(strategy, prefix string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyShort:
		return Short(prefix), nil
	case StrategyUUID:
		return UUID(prefix), nil
	default:
		return nil, fmt.Errorf("unknown booking id strategy %q", strategy)
	}
}

// Short returns a generator of prefix + "-" + six random characters drawn
// from an alphabet without easily confused glyphs.  Codes are short enough
// to read over the phone, so callers must handle the rare collision.
func Short(prefix string) Generator {
	max := big.NewInt(int64(len(shortAlphabet)))
	return func() string {
		var b strings.Builder
		if prefix != "" {
			b.WriteString(prefix)
			b.WriteByte('-')
		}
		for i := 0; i < shortLength; i++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				// crypto/rand does not fail on supported platforms
				panic(fmt.Sprintf("idgen: read random: %v", err))
			}
			b.WriteByte(shortAlphabet[n.Int64()])
		}
		return b.String()
	}
}

// UUID returns a generator of prefix + "-" + a random v4 UUID.
func UUID(prefix string) Generator {
	return func() string {
		id := uuid.NewString()
		if prefix == "" {
			return id
		}
		return prefix + "-" + id
	}
}
