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
	"errors"
	"math/big"
	"testing"

	"gitlab.com/aquachain/ethashlight/common"
	"gitlab.com/aquachain/ethashlight/params"
)

// Tests the cache and dataset sizes against the ones go-ethereum ships in its
// precomputed tables.
func TestMainnetSizes(t *testing.T) {
	tests := []struct {
		epoch     uint64
		cacheSize uint64
		fullSize  uint64
	}{
		{0, 16776896, 1073739904},
		{1, 16907456, 1082130304},
		{2, 17039296, 1090514816},
		{100, 29882816, 1912601216},
		{299, 55967168, 3581934464},
		{1000, 147848768, 9462346624},
		{2047, 285081536, 18245220736},
	}
	for _, tt := range tests {
		cacheSize, err := CacheSize(nil, tt.epoch)
		if err != nil {
			t.Fatalf("epoch %d: cache size failed: %v", tt.epoch, err)
		}
		if cacheSize != tt.cacheSize {
			t.Errorf("epoch %d: cache size mismatch: have %d, want %d", tt.epoch, cacheSize, tt.cacheSize)
		}
		fullSize, err := DatasetSize(params.MainnetEthash, tt.epoch)
		if err != nil {
			t.Fatalf("epoch %d: dataset size failed: %v", tt.epoch, err)
		}
		if fullSize != tt.fullSize {
			t.Errorf("epoch %d: dataset size mismatch: have %d, want %d", tt.epoch, fullSize, tt.fullSize)
		}
	}
}

func TestTestSizes(t *testing.T) {
	var (
		cacheSizes = []uint64{3904, 3904, 4288, 4288}
		fullSizes  = []uint64{260992, 270208, 276608, 286592}
	)
	for epoch := range cacheSizes {
		cacheSize, fullSize, _, err := Parameters(params.TestEthash, uint64(epoch))
		if err != nil {
			t.Fatalf("epoch %d: %v", epoch, err)
		}
		if cacheSize != cacheSizes[epoch] || fullSize != fullSizes[epoch] {
			t.Errorf("epoch %d: sizes mismatch: have %d/%d, want %d/%d", epoch, cacheSize, fullSize, cacheSizes[epoch], fullSizes[epoch])
		}
	}
}

// Tests that sizes never shrink, stay aligned, hold a prime number of items
// and keep the dataset about 64 times larger than the cache.
func TestSizeContract(t *testing.T) {
	for _, cfg := range []*params.EthashConfig{params.TestEthash, params.MainnetEthash} {
		var prevCache, prevFull uint64
		for epoch := uint64(0); epoch <= 100; epoch++ {
			cacheSize, err := CacheSize(cfg, epoch)
			if err != nil {
				t.Fatalf("%s epoch %d: %v", cfg.Name, epoch, err)
			}
			fullSize, err := DatasetSize(cfg, epoch)
			if err != nil {
				t.Fatalf("%s epoch %d: %v", cfg.Name, epoch, err)
			}
			if cacheSize < prevCache || fullSize < prevFull {
				t.Errorf("%s epoch %d: sizes shrunk: cache %d -> %d, dataset %d -> %d", cfg.Name, epoch, prevCache, cacheSize, prevFull, fullSize)
			}
			prevCache, prevFull = cacheSize, fullSize

			if cacheSize%hashBytes != 0 || !new(big.Int).SetUint64(cacheSize/hashBytes).ProbablyPrime(20) {
				t.Errorf("%s epoch %d: bad cache size %d", cfg.Name, epoch, cacheSize)
			}
			if fullSize%mixBytes != 0 || !new(big.Int).SetUint64(fullSize/mixBytes).ProbablyPrime(20) {
				t.Errorf("%s epoch %d: bad dataset size %d", cfg.Name, epoch, fullSize)
			}
			if limit := cfg.CacheInitBytes + cfg.CacheGrowthBytes*epoch; cacheSize >= limit {
				t.Errorf("%s epoch %d: cache size %d not below %d", cfg.Name, epoch, cacheSize, limit)
			}
			if ratio := float64(fullSize) / float64(cacheSize); ratio < 54.4 || ratio > 73.6 {
				t.Errorf("%s epoch %d: dataset/cache ratio %.2f out of range", cfg.Name, epoch, ratio)
			}
		}
	}
}

func TestEpochOf(t *testing.T) {
	tests := []struct {
		cfg    *params.EthashConfig
		number uint64
		epoch  uint64
	}{
		{nil, 0, 0},
		{nil, 29999, 0},
		{nil, 30000, 1},
		{params.MainnetEthash, 8996777, 299},
		{params.TestEthash, 99, 0},
		{params.TestEthash, 100, 1},
		{params.TestEthash, 250, 2},
	}
	for i, tt := range tests {
		if have := EpochOf(tt.cfg, tt.number); have != tt.epoch {
			t.Errorf("test %d: epoch of block %d: have %d, want %d", i, tt.number, have, tt.epoch)
		}
	}
}

func TestSeedHashExported(t *testing.T) {
	seed, err := SeedHash(nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := common.HexToHash("290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"); seed != want {
		t.Errorf("seed mismatch: have %x, want %x", seed, want)
	}
	_, _, pseed, err := Parameters(nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if pseed != seed {
		t.Errorf("Parameters seed %x differs from SeedHash %x", pseed, seed)
	}
}

func TestInvalidEpoch(t *testing.T) {
	for _, cfg := range []*params.EthashConfig{params.MainnetEthash, params.TestEthash} {
		last := MaxEpoch(cfg)
		if _, err := CacheSize(cfg, last); err != nil {
			t.Errorf("%s: cache size of last epoch %d failed: %v", cfg.Name, last, err)
		}
		if _, err := DatasetSize(cfg, last); err != nil {
			t.Errorf("%s: dataset size of last epoch %d failed: %v", cfg.Name, last, err)
		}
		for _, epoch := range []uint64{last + 1, 1 << 62, ^uint64(0)} {
			if _, err := CacheSize(cfg, epoch); !errors.Is(err, ErrInvalidEpoch) {
				t.Errorf("%s: cache size of epoch %d: have error %v, want %v", cfg.Name, epoch, err, ErrInvalidEpoch)
			}
			if _, err := DatasetSize(cfg, epoch); !errors.Is(err, ErrInvalidEpoch) {
				t.Errorf("%s: dataset size of epoch %d: have error %v, want %v", cfg.Name, epoch, err, ErrInvalidEpoch)
			}
			if _, err := SeedHash(cfg, epoch); !errors.Is(err, ErrInvalidEpoch) {
				t.Errorf("%s: seed of epoch %d: have error %v, want %v", cfg.Name, epoch, err, ErrInvalidEpoch)
			}
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	bad := params.TestEthash.Copy()
	bad.BlocksPerEpoch = 0

	if _, err := CacheSize(bad, 0); !errors.Is(err, params.ErrInvalidEthashConfig) {
		t.Errorf("cache size: have error %v, want %v", err, params.ErrInvalidEthashConfig)
	}
	if _, err := MakeCache(bad, 0); !errors.Is(err, params.ErrInvalidEthashConfig) {
		t.Errorf("make cache: have error %v, want %v", err, params.ErrInvalidEthashConfig)
	}
	if _, err := New(0, bad); !errors.Is(err, params.ErrInvalidEthashConfig) {
		t.Errorf("new: have error %v, want %v", err, params.ErrInvalidEthashConfig)
	}
}

func TestGenerateCache(t *testing.T) {
	cache := make([]byte, 1024)
	if err := GenerateCache(cache, common.Hash{}, 3); err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 1024)
	generateCache(want, 0, make([]byte, 32), 3)
	if string(cache) != string(want) {
		t.Errorf("exported cache generation differs")
	}
	for _, size := range []int{0, 1, 63, 65, 1000} {
		if err := GenerateCache(make([]byte, size), common.Hash{}, 3); !errors.Is(err, ErrInvalidCacheSize) {
			t.Errorf("size %d: have error %v, want %v", size, err, ErrInvalidCacheSize)
		}
	}
	if err := GenerateCache(cache, common.Hash{}, -1); !errors.Is(err, params.ErrInvalidEthashConfig) {
		t.Errorf("negative rounds: have error %v, want %v", err, params.ErrInvalidEthashConfig)
	}
}

func TestMakeCache(t *testing.T) {
	cache, err := MakeCache(params.TestEthash, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(cache) != 3904 {
		t.Fatalf("cache length mismatch: have %d, want %d", len(cache), 3904)
	}
	want := make([]byte, len(cache))
	seed, _ := SeedHash(params.TestEthash, 1)
	if err := GenerateCache(want, seed, params.TestEthash.CacheRounds); err != nil {
		t.Fatal(err)
	}
	if string(cache) != string(want) {
		t.Errorf("cache of epoch 1 differs from one generated from its seed")
	}
}

func TestHashimotoLightParameters(t *testing.T) {
	cache := make([]byte, 1024)
	generateCache(cache, 0, make([]byte, 32), 3)

	tests := []struct {
		fullSize uint64
		cache    []byte
	}{
		{0, cache},
		{32*1024 + 64, cache},
		{100, cache},
		{itemLimit + hashBytes, cache},
		{32 * 1024, nil},
		{32 * 1024, cache[:100]},
	}
	for i, tt := range tests {
		if _, _, err := HashimotoLight(nil, tt.fullSize, tt.cache, common.Hash{}, 0); !errors.Is(err, ErrInvalidDatasetParameters) {
			t.Errorf("test %d: have error %v, want %v", i, err, ErrInvalidDatasetParameters)
		}
	}
	if _, _, err := HashimotoLight(nil, 32*1024, cache[:100], common.Hash{}, 0); !errors.Is(err, ErrInvalidCacheSize) {
		t.Errorf("unaligned cache error %v does not wrap %v", err, ErrInvalidCacheSize)
	}
	mix, result, err := HashimotoLight(nil, 32*1024, cache, common.HexToHash("c9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := common.HexToHash("e4073cffaef931d37117cefd9afd27ea0f1cad6a981dd2605c4a1ac97c519800"); mix != want {
		t.Errorf("digest mismatch: have %x, want %x", mix, want)
	}
	if want := common.HexToHash("d3539235ee2e6f8db665c0a72169f55b7f6c605712330b778ec3944f0eb5a557"); result != want {
		t.Errorf("result mismatch: have %x, want %x", result, want)
	}
}
