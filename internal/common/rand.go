package common

import (
	"crypto/rand"
	"encoding/hex"
)

// recordIDSize is the number of random bytes in a record identifier. Twelve
// bytes keep ids the same length as the document ids of the legacy store.
const recordIDSize = 12

// MakeRandHexString returns size random bytes from crypto/rand encoded as
// hex, so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewRecordID returns a fresh opaque user identifier.
func NewRecordID() (string, error) {
	return MakeRandHexString(recordIDSize)
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
