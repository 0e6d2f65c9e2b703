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

package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"gitlab.com/aquachain/ethashlight/common/toml"
)

// ErrInvalidEthashConfig is returned when a network variant cannot drive the
// ethash size and seed functions.
var ErrInvalidEthashConfig = errors.New("invalid ethash config")

// EthashConfig holds the protocol constants of one ethash network variant.
// The values are consensus critical: two nodes only agree on digests if
// every field matches.
type EthashConfig struct {
	Name string `toml:",omitempty"`

	BlocksPerEpoch uint64 // Blocks sharing one seed, cache and dataset

	CacheInitBytes     uint64 // Bytes in cache at genesis
	CacheGrowthBytes   uint64 // Cache growth per epoch
	DatasetInitBytes   uint64 // Bytes in dataset at genesis
	DatasetGrowthBytes uint64 // Dataset growth per epoch

	CacheRounds    int    // Number of rounds in cache production
	DatasetParents uint32 // Number of parents of each dataset element
	LoopAccesses   int    // Number of accesses in hashimoto loop
}

var (
	// MainnetEthash are the parameters of the Ethereum main network.
	MainnetEthash = &EthashConfig{
		Name:               "ethereum",
		BlocksPerEpoch:     30000,
		CacheInitBytes:     1 << 24,
		CacheGrowthBytes:   1 << 17,
		DatasetInitBytes:   1 << 30,
		DatasetGrowthBytes: 1 << 23,
		CacheRounds:        3,
		DatasetParents:     256,
		LoopAccesses:       64,
	}

	// TestEthash keeps the mainnet algorithm but shrinks epochs and sizes so
	// whole epochs can be generated in unit tests.
	TestEthash = &EthashConfig{
		Name:               "test",
		BlocksPerEpoch:     100,
		CacheInitBytes:     1 << 12,
		CacheGrowthBytes:   1 << 7,
		DatasetInitBytes:   1 << 18,
		DatasetGrowthBytes: 1 << 13,
		CacheRounds:        3,
		DatasetParents:     256,
		LoopAccesses:       64,
	}
)

var variants = map[string]*EthashConfig{
	MainnetEthash.Name: MainnetEthash,
	TestEthash.Name:    TestEthash,
}

// EthashVariant returns the built-in variant with the given name.
func EthashVariant(name string) (*EthashConfig, bool) {
	c, ok := variants[name]
	return c, ok
}

// EthashVariants lists the names of the built-in variants.
func EthashVariants() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EpochLength returns the number of blocks per epoch.
func (c *EthashConfig) EpochLength() uint64 {
	return c.BlocksPerEpoch
}

// Epoch returns the epoch the given block number belongs to.
func (c *EthashConfig) Epoch(number uint64) uint64 {
	return number / c.BlocksPerEpoch
}

// Copy returns a deep copy of c.
func (c *EthashConfig) Copy() *EthashConfig {
	cpy := *c
	return &cpy
}

// Validate checks that the size functions terminate and that every
// algorithm constant is usable. Sizes must be aligned to the 64 byte cache
// item and the 128 byte dataset page, and leave room for the prime search.
func (c *EthashConfig) Validate() error {
	switch {
	case c == nil:
		return fmt.Errorf("%w: nil config", ErrInvalidEthashConfig)
	case c.BlocksPerEpoch == 0:
		return fmt.Errorf("%w: zero epoch length", ErrInvalidEthashConfig)
	case c.CacheInitBytes < 4*64 || c.CacheInitBytes%64 != 0:
		return fmt.Errorf("%w: cache init bytes %d", ErrInvalidEthashConfig, c.CacheInitBytes)
	case c.CacheGrowthBytes%64 != 0:
		return fmt.Errorf("%w: cache growth bytes %d", ErrInvalidEthashConfig, c.CacheGrowthBytes)
	case c.DatasetInitBytes < 4*128 || c.DatasetInitBytes%128 != 0:
		return fmt.Errorf("%w: dataset init bytes %d", ErrInvalidEthashConfig, c.DatasetInitBytes)
	case c.DatasetGrowthBytes%128 != 0:
		return fmt.Errorf("%w: dataset growth bytes %d", ErrInvalidEthashConfig, c.DatasetGrowthBytes)
	case c.CacheRounds <= 0:
		return fmt.Errorf("%w: cache rounds %d", ErrInvalidEthashConfig, c.CacheRounds)
	case c.DatasetParents == 0:
		return fmt.Errorf("%w: zero dataset parents", ErrInvalidEthashConfig)
	case c.LoopAccesses <= 0:
		return fmt.Errorf("%w: loop accesses %d", ErrInvalidEthashConfig, c.LoopAccesses)
	}
	return nil
}

// String encodes the config as TOML.
func (c *EthashConfig) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("EthashConfig{%s: %v}", c.Name, err)
	}
	return buf.String()
}

// DecodeEthashConfig reads a variant from TOML. Fields missing from the
// document keep their mainnet values.
func DecodeEthashConfig(r io.Reader) (*EthashConfig, error) {
	cfg := MainnetEthash.Copy()
	cfg.Name = ""
	if err := toml.Decode(r, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEthashConfig reads a variant from a TOML file, see DecodeEthashConfig.
func LoadEthashConfig(path string) (*EthashConfig, error) {
	cfg := MainnetEthash.Copy()
	cfg.Name = ""
	if err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
