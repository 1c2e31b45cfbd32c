// Package seal provides the hashing support used to seal blocks on the
// ledger. A seal is the hex encoded digest of a value's canonical JSON form.
package seal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/crypto"
)

// Genesis is the previous seal recorded on the genesis block since it has
// no real predecessor.
const Genesis = "0"

// Set of digest names that can be selected by configuration.
const (
	SHA256    = "sha256"
	Keccak256 = "keccak256"
	SHA256D   = "sha256d"
)

// Size is the number of hex characters in every seal produced by the
// supported digests.
const Size = 64

// =============================================================================

// Hasher produces seals for values using a specific digest function.
type Hasher struct {
	name   string
	digest func(data []byte) []byte
}

var digests = map[string]func(data []byte) []byte{
	SHA256: func(data []byte) []byte {
		hash := sha256.Sum256(data)
		return hash[:]
	},
	Keccak256: func(data []byte) []byte {
		return crypto.Keccak256(data)
	},
	SHA256D: func(data []byte) []byte {
		return chainhash.DoubleHashB(data)
	},
}

// New constructs a Hasher for the named digest. An empty name selects
// SHA256.
func New(name string) (Hasher, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = SHA256
	}

	digest, exists := digests[name]
	if !exists {
		return Hasher{}, fmt.Errorf("unknown hasher %q, expecting one of %s", name, strings.Join(Names(), ", "))
	}

	return Hasher{name: name, digest: digest}, nil
}

// Default returns the SHA256 hasher.
func Default() Hasher {
	return Hasher{name: SHA256, digest: digests[SHA256]}
}

// Names returns the sorted list of supported digest names.
func Names() []string {
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Name returns the digest name for this hasher.
func (h Hasher) Name() string {
	return h.name
}

// Seal returns the lowercase hex digest of the value's canonical encoding.
func (h Hasher) Seal(value any) (string, error) {
	data, err := Encode(value)
	if err != nil {
		return "", err
	}

	return h.SealBytes(data), nil
}

// SealBytes returns the lowercase hex digest of data.
func (h Hasher) SealBytes(data []byte) string {
	digest := h.digest
	if digest == nil {
		digest = digests[SHA256]
	}

	return hex.EncodeToString(digest(data))
}

// =============================================================================

// Encode produces the canonical byte form of a value. Struct fields are
// written in declaration order so the output is stable across processes.
func Encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}

	return data, nil
}

// IsSolved checks the seal to make sure it complies with the proof of work
// rules. We need to match a difficulty number of leading 0's.
func IsSolved(difficulty uint, hash string) bool {
	if len(hash) != Size || difficulty > Size {
		return false
	}

	return LeadingZeros(hash) >= difficulty
}

// LeadingZeros counts the run of '0' characters at the front of the seal.
func LeadingZeros(hash string) uint {
	var n uint
	for _, c := range hash {
		if c != '0' {
			break
		}
		n++
	}

	return n
}
