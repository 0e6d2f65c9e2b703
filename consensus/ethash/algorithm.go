// Copyright 2018 The aquachain Authors
// This file is part of the aquachain library.
//
// The aquachain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aquachain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aquachain library. If not, see <http://www.gnu.org/licenses/>.

package ethash

import (
	"crypto/subtle"
	"encoding/binary"
	"hash"
	"math/big"
	"time"

	"gitlab.com/aquachain/ethashlight/common"
	"gitlab.com/aquachain/ethashlight/common/log"
	"gitlab.com/aquachain/ethashlight/crypto/sha3"
)

const (
	hashBytes = 64                      // Hash length in bytes
	hashWords = hashBytes / 4           // Number of 32 bit ints in a hash
	mixBytes  = 128                     // Width of mix
	mixWords  = mixBytes / 4            // Number of 32 bit ints in the mix
	itemLimit = hashBytes * (1<<32 - 1) // Largest cache or dataset with uint32 item counts

	fnvPrime = 0x01000193
)

// hasher is a repetitive hasher allowing the same hash data structures to be
// reused between hash runs instead of requiring new ones to be created.
type hasher func(dest []byte, data []byte)

// makeHasher creates a repetitive hasher, allowing the same hash data structures
// to be reused between hash runs instead of requiring new ones to be created.
// The returned function is not thread safe!
func makeHasher(h hash.Hash) hasher {
	return func(dest []byte, data []byte) {
		h.Write(data)
		h.Sum(dest[:0])
		h.Reset()
	}
}

// seedHash is the seed to use for generating a verification cache and the mining
// dataset of the given epoch. The chain is recomputed from the zero seed on
// every call.
func seedHash(epoch uint64) []byte {
	seed := make([]byte, 32)
	if epoch == 0 {
		return seed
	}
	keccak256 := makeHasher(sha3.NewKeccak256())
	for i := uint64(0); i < epoch; i++ {
		keccak256(seed, seed)
	}
	return seed
}

// calcSize steps a raw epoch size down to the largest value below it whose
// item count is prime. ProbablyPrime is exact for inputs below 2^64.
func calcSize(init, growth, epoch, unit uint64) uint64 {
	size := init + growth*epoch - unit
	for !new(big.Int).SetUint64(size / unit).ProbablyPrime(1) {
		size -= 2 * unit
	}
	return size
}

// generateCache creates a verification cache of the size of dest, filling it
// in place. The first pass is a sequential Keccak512 chain over 64 byte items
// seeded with seed, followed by rounds of RandMemoHash where every item is
// rehashed from its predecessor XORed with a pseudorandom item.
//
// Words are read little endian from the byte buffer, so the result does not
// depend on the machine byte order.
func generateCache(dest []byte, epoch uint64, seed []byte, rounds int) {
	// Print some debug logs to allow analysis on low end devices
	logger := log.New("epoch", epoch)

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)

		logFn := logger.Debug
		if elapsed > 3*time.Second {
			logFn = logger.Info
		}
		logFn("Generated ethash verification cache", "size", len(dest), "elapsed", common.PrettyDuration(elapsed))
	}()

	size := len(dest)
	rows := size / hashBytes

	// Create a hasher to reuse between invocations
	keccak512 := makeHasher(sha3.NewKeccak512())

	// Sequentially produce the initial dataset
	keccak512(dest, seed)
	for offset := hashBytes; offset < size; offset += hashBytes {
		keccak512(dest[offset:], dest[offset-hashBytes:offset])
	}
	// Use a low-round version of randmemohash
	temp := make([]byte, hashBytes)

	for i := 0; i < rounds; i++ {
		for j := 0; j < rows; j++ {
			var (
				srcOff = ((j - 1 + rows) % rows) * hashBytes
				dstOff = j * hashBytes
				xorOff = int(binary.LittleEndian.Uint32(dest[dstOff:])%uint32(rows)) * hashBytes
			)
			subtle.XORBytes(temp, dest[srcOff:srcOff+hashBytes], dest[xorOff:xorOff+hashBytes])
			keccak512(dest[dstOff:], temp)
		}
	}
}

// fnv is an algorithm inspired by the FNV hash, which in some cases is used as
// a non-associative substitute for XOR. Note that we multiply the prime with
// the full 32-bit input, in contrast with FNV-1 which multiplies the
// prime with one byte (octet) in turn.
func fnv(a, b uint32) uint32 {
	return a*fnvPrime ^ b
}

// fnvHash mixes in data into mix using the ethash fnv method.
func fnvHash(mix []uint32, data []uint32) {
	for i := 0; i < len(mix); i++ {
		mix[i] = mix[i]*fnvPrime ^ data[i]
	}
}

// fnvHashItem is fnvHash over a little endian encoded cache item.
func fnvHashItem(mix []uint32, item []byte) {
	for i := 0; i < hashWords; i++ {
		mix[i] = mix[i]*fnvPrime ^ binary.LittleEndian.Uint32(item[i*4:])
	}
}

// generateDatasetItem combines data from parents pseudorandomly selected
// cache items, and hashes that to compute a single dataset item. The item is
// written as words into out, buf is scratch space of hashBytes.
func generateDatasetItem(cache []byte, index uint32, parents uint32, keccak512 hasher, buf []byte, out []uint32) {
	// Calculate the number of theoretical rows (we use one buffer nonetheless)
	rows := uint32(len(cache) / hashBytes)

	// Initialize the mix
	offset := int(index%rows) * hashBytes
	copy(buf, cache[offset:offset+hashBytes])
	binary.LittleEndian.PutUint32(buf, binary.LittleEndian.Uint32(buf)^index)
	keccak512(buf, buf)

	// Convert the mix to uint32s to avoid constant bit shifting
	for i := 0; i < hashWords; i++ {
		out[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	// fnv it with a lot of random cache nodes based on index
	for i := uint32(0); i < parents; i++ {
		parent := int(fnv(index^i, out[i%hashWords]) % rows)
		fnvHashItem(out, cache[parent*hashBytes:])
	}
	// Flatten the uint32 mix into a binary one and hash it
	for i, val := range out[:hashWords] {
		binary.LittleEndian.PutUint32(buf[i*4:], val)
	}
	keccak512(buf, buf)
	for i := 0; i < hashWords; i++ {
		out[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
}

// hashimoto aggregates data from the full dataset in order to produce our final
// value for a particular header hash and nonce. lookup writes the dataset item
// with the given index into its second argument.
func hashimoto(hash common.Hash, nonce uint64, size uint64, accesses int, lookup func(index uint32, item []uint32)) (common.Hash, common.Hash) {
	// Calculate the number of theoretical rows (we use one buffer nonetheless)
	rows := uint32(size / mixBytes)

	// Combine header+nonce into a 64 byte seed
	seed := make([]byte, 40)
	copy(seed, hash[:])
	binary.LittleEndian.PutUint64(seed[32:], nonce)

	seed = sha3.Keccak512(seed)
	seedHead := binary.LittleEndian.Uint32(seed)

	// Start the mix with replicated seed
	mix := make([]uint32, mixWords)
	for i := 0; i < len(mix); i++ {
		mix[i] = binary.LittleEndian.Uint32(seed[i%hashWords*4:])
	}
	// Mix in random dataset nodes
	temp := make([]uint32, len(mix))

	for i := 0; i < accesses; i++ {
		parent := fnv(uint32(i)^seedHead, mix[i%len(mix)]) % rows
		for j := uint32(0); j < mixBytes/hashBytes; j++ {
			lookup(2*parent+j, temp[j*hashWords:(j+1)*hashWords])
		}
		fnvHash(mix, temp)
	}
	// Compress mix
	for i := 0; i < len(mix); i += 4 {
		mix[i/4] = fnv(fnv(fnv(mix[i], mix[i+1]), mix[i+2]), mix[i+3])
	}
	mix = mix[:len(mix)/4]

	var digest common.Hash
	for i, val := range mix {
		binary.LittleEndian.PutUint32(digest[i*4:], val)
	}
	return digest, common.BytesToHash(sha3.Keccak256(seed, digest[:]))
}

// hashimotoLight aggregates data from the full dataset (using only a small
// in-memory cache) in order to produce our final value for a particular header
// hash and nonce. Every dataset item touched is recomputed from the cache.
//
// All scratch state is local to the call, so concurrent calls may share one
// cache as long as nobody writes to it.
func hashimotoLight(size uint64, cache []byte, hash common.Hash, nonce uint64, parents uint32, accesses int) (common.Hash, common.Hash) {
	keccak512 := makeHasher(sha3.NewKeccak512())
	buf := make([]byte, hashBytes)

	lookup := func(index uint32, item []uint32) {
		generateDatasetItem(cache, index, parents, keccak512, buf, item)
	}
	return hashimoto(hash, nonce, size, accesses, lookup)
}
