package sha3

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := NewKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// NewKeccak256 returns the legacy (pre-NIST padding) Keccak256 used by
// ethash for seeds and result hashes.
func NewKeccak256() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Keccak512 calculates and returns the Keccak512 hash of the input data.
//
// only used for ethash cache items, dataset items and the hashimoto seed
func Keccak512(data ...[]byte) []byte {
	d := NewKeccak512()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

func NewKeccak512() hash.Hash {
	return sha3.NewLegacyKeccak512()
}
