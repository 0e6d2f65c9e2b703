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

// Package ethash implements light verification of the ethash proof-of-work:
// per-epoch sizes and seeds, verification cache generation and the hashimoto
// mix over a cache. Full dataset generation and difficulty checks live
// elsewhere.
package ethash

import (
	"fmt"

	"gitlab.com/aquachain/ethashlight/common"
	"gitlab.com/aquachain/ethashlight/params"
)

// LightDAG holds the verification cache of one epoch together with the size
// of that epoch's dataset. The two are fixed at construction.
//
// The cache is never written after construction, so Hashimoto may be called
// from any number of goroutines at once.
type LightDAG struct {
	epoch     uint64
	cache     []byte
	cacheSize uint64
	fullSize  uint64
	config    *params.EthashConfig
}

// New generates the verification cache for the epoch of block number.
// A nil cfg selects the mainnet variant.
func New(number uint64, cfg *params.EthashConfig) (*LightDAG, error) {
	cfg = configOrDefault(cfg).Copy()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	epoch := cfg.Epoch(number)
	cacheSize, fullSize, seed, err := Parameters(cfg, epoch)
	if err != nil {
		return nil, err
	}
	cache := make([]byte, cacheSize)
	generateCache(cache, epoch, seed[:], cfg.CacheRounds)

	return &LightDAG{
		epoch:     epoch,
		cache:     cache,
		cacheSize: cacheSize,
		fullSize:  fullSize,
		config:    cfg,
	}, nil
}

// FromCache wraps a cache generated earlier (typically by New and persisted by
// the caller) for the epoch of block number. The bytes are taken as is: only
// their length is checked against the epoch, their content is trusted. The
// LightDAG takes ownership of cache.
func FromCache(cache []byte, number uint64, cfg *params.EthashConfig) (*LightDAG, error) {
	cfg = configOrDefault(cfg).Copy()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	epoch := cfg.Epoch(number)
	cacheSize, err := CacheSize(cfg, epoch)
	if err != nil {
		return nil, err
	}
	fullSize, err := DatasetSize(cfg, epoch)
	if err != nil {
		return nil, err
	}
	if uint64(len(cache)) != cacheSize {
		return nil, fmt.Errorf("%w: have %d bytes, epoch %d needs %d", ErrInvalidCacheSize, len(cache), epoch, cacheSize)
	}
	return &LightDAG{
		epoch:     epoch,
		cache:     cache,
		cacheSize: cacheSize,
		fullSize:  fullSize,
		config:    cfg,
	}, nil
}

// Hashimoto returns the mix digest and result hash of a header hash and nonce.
// It does not check that the header belongs to this epoch, see IsValidFor.
func (dag *LightDAG) Hashimoto(hash common.Hash, nonce uint64) (mix, result common.Hash, err error) {
	return HashimotoLight(dag.config, dag.fullSize, dag.cache, hash, nonce)
}

// IsValidFor reports whether block number falls into the epoch of dag.
func (dag *LightDAG) IsValidFor(number uint64) bool {
	return dag.config.Epoch(number) == dag.epoch
}

// Epoch returns the epoch the cache was built for.
func (dag *LightDAG) Epoch() uint64 { return dag.epoch }

// CacheSize returns the cache length in bytes.
func (dag *LightDAG) CacheSize() uint64 { return dag.cacheSize }

// FullSize returns the size in bytes of the dataset the cache stands in for.
func (dag *LightDAG) FullSize() uint64 { return dag.fullSize }

// Cache returns the cache bytes, e.g. for persisting them. The slice is shared
// with dag and must not be modified.
func (dag *LightDAG) Cache() []byte { return dag.cache }

// Config returns the network variant the DAG was built with.
func (dag *LightDAG) Config() *params.EthashConfig { return dag.config }

// String implements fmt.Stringer.
func (dag *LightDAG) String() string {
	return fmt.Sprintf("LightDAG{variant: %s, epoch: %d, cache: %d, dataset: %d}", dag.config.Name, dag.epoch, dag.cacheSize, dag.fullSize)
}
