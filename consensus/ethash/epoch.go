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
	"fmt"
	"math"

	"gitlab.com/aquachain/ethashlight/common"
	"gitlab.com/aquachain/ethashlight/params"
)

// cacheLimit bounds cache sizes to what uint32 item indices and the
// platform int can address.
func cacheLimit() uint64 {
	if uint64(math.MaxInt) < itemLimit {
		return uint64(math.MaxInt)
	}
	return itemLimit
}

// datasetLimit bounds dataset sizes. The dataset is never allocated here, so
// only the uint32 item indices matter.
func datasetLimit() uint64 {
	return itemLimit
}

func sizeFits(init, growth, epoch, limit uint64) bool {
	if init > limit {
		return false
	}
	return growth == 0 || epoch <= (limit-init)/growth
}

func configOrDefault(cfg *params.EthashConfig) *params.EthashConfig {
	if cfg == nil {
		return params.MainnetEthash
	}
	return cfg
}

// checkEpoch validates cfg and that the sizes of epoch are addressable.
func checkEpoch(cfg *params.EthashConfig, epoch uint64) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !sizeFits(cfg.CacheInitBytes, cfg.CacheGrowthBytes, epoch, cacheLimit()) ||
		!sizeFits(cfg.DatasetInitBytes, cfg.DatasetGrowthBytes, epoch, datasetLimit()) {
		return fmt.Errorf("%w: epoch %d is beyond the last addressable epoch %d", ErrInvalidEpoch, epoch, MaxEpoch(cfg))
	}
	return nil
}

// MaxEpoch returns the last epoch whose cache and dataset sizes can be
// computed and addressed under cfg. A nil cfg selects the mainnet variant.
func MaxEpoch(cfg *params.EthashConfig) uint64 {
	cfg = configOrDefault(cfg)
	last := func(init, growth, limit uint64) uint64 {
		if growth == 0 {
			return math.MaxUint64
		}
		return (limit - init) / growth
	}
	if cfg.CacheInitBytes > cacheLimit() || cfg.DatasetInitBytes > datasetLimit() {
		return 0
	}
	return min(
		last(cfg.CacheInitBytes, cfg.CacheGrowthBytes, cacheLimit()),
		last(cfg.DatasetInitBytes, cfg.DatasetGrowthBytes, datasetLimit()),
	)
}

// EpochOf returns the epoch of the given block number. cfg must have a non-zero
// epoch length.
func EpochOf(cfg *params.EthashConfig, number uint64) uint64 {
	return configOrDefault(cfg).Epoch(number)
}

// CacheSize returns the size of the ethash verification cache that belongs to
// a certain epoch.
func CacheSize(cfg *params.EthashConfig, epoch uint64) (uint64, error) {
	cfg = configOrDefault(cfg)
	if err := checkEpoch(cfg, epoch); err != nil {
		return 0, err
	}
	return calcSize(cfg.CacheInitBytes, cfg.CacheGrowthBytes, epoch, hashBytes), nil
}

// DatasetSize returns the size of the ethash mining dataset that belongs to a
// certain epoch.
func DatasetSize(cfg *params.EthashConfig, epoch uint64) (uint64, error) {
	cfg = configOrDefault(cfg)
	if err := checkEpoch(cfg, epoch); err != nil {
		return 0, err
	}
	return calcSize(cfg.DatasetInitBytes, cfg.DatasetGrowthBytes, epoch, mixBytes), nil
}

// SeedHash returns the seed of an epoch: the zero hash for epoch 0, and the
// Keccak256 of the previous epoch's seed after that.
func SeedHash(cfg *params.EthashConfig, epoch uint64) (common.Hash, error) {
	if err := checkEpoch(configOrDefault(cfg), epoch); err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(seedHash(epoch)), nil
}

// Parameters returns the cache size, dataset size and seed of an epoch.
func Parameters(cfg *params.EthashConfig, epoch uint64) (cacheSize, fullSize uint64, seed common.Hash, err error) {
	if cacheSize, err = CacheSize(cfg, epoch); err != nil {
		return 0, 0, common.Hash{}, err
	}
	if fullSize, err = DatasetSize(cfg, epoch); err != nil {
		return 0, 0, common.Hash{}, err
	}
	return cacheSize, fullSize, common.BytesToHash(seedHash(epoch)), nil
}

// MakeCache generates the verification cache of an epoch.
func MakeCache(cfg *params.EthashConfig, epoch uint64) ([]byte, error) {
	cfg = configOrDefault(cfg)
	size, err := CacheSize(cfg, epoch)
	if err != nil {
		return nil, err
	}
	cache := make([]byte, size)
	generateCache(cache, epoch, seedHash(epoch), cfg.CacheRounds)
	return cache, nil
}

// GenerateCache fills dest with the cache derived from seed using the given
// number of RandMemoHash rounds. dest must hold a whole, non-zero number of
// 64 byte items.
func GenerateCache(dest []byte, seed common.Hash, rounds int) error {
	if err := checkCache(dest); err != nil {
		return err
	}
	if rounds < 0 {
		return fmt.Errorf("%w: negative round count %d", params.ErrInvalidEthashConfig, rounds)
	}
	generateCache(dest, 0, seed[:], rounds)
	return nil
}

func checkCache(cache []byte) error {
	switch {
	case len(cache) == 0:
		return fmt.Errorf("%w: empty cache", ErrInvalidCacheSize)
	case len(cache)%hashBytes != 0:
		return fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidCacheSize, len(cache), hashBytes)
	case uint64(len(cache)) > cacheLimit():
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidCacheSize, len(cache), cacheLimit())
	}
	return nil
}

// HashimotoLight computes the mix digest and result hash of a header hash and
// nonce against a dataset of fullSize bytes, recomputing every dataset item it
// touches from cache.
func HashimotoLight(cfg *params.EthashConfig, fullSize uint64, cache []byte, hash common.Hash, nonce uint64) (mix, result common.Hash, err error) {
	cfg = configOrDefault(cfg)
	if err := cfg.Validate(); err != nil {
		return common.Hash{}, common.Hash{}, err
	}
	switch {
	case fullSize == 0 || fullSize%mixBytes != 0:
		return common.Hash{}, common.Hash{}, fmt.Errorf("%w: dataset size %d is not a non-zero multiple of %d", ErrInvalidDatasetParameters, fullSize, mixBytes)
	case fullSize > datasetLimit():
		return common.Hash{}, common.Hash{}, fmt.Errorf("%w: dataset size %d exceeds %d", ErrInvalidDatasetParameters, fullSize, datasetLimit())
	}
	if err := checkCache(cache); err != nil {
		return common.Hash{}, common.Hash{}, fmt.Errorf("%w: %w", ErrInvalidDatasetParameters, err)
	}
	mix, result = hashimotoLight(fullSize, cache, hash, nonce, cfg.DatasetParents, cfg.LoopAccesses)
	return mix, result, nil
}
