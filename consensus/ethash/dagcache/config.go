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

package dagcache

import (
	"fmt"
	"io"
	"os"

	"gitlab.com/aquachain/ethashlight/common/toml"
	"gitlab.com/aquachain/ethashlight/params"
)

// fileConfig is the TOML layout of a Config.
type fileConfig struct {
	Variant     string               `toml:",omitempty"` // built-in variant name
	CachesInMem int                  // epochs kept in memory
	Ethash      *params.EthashConfig `toml:",omitempty"` // custom variant, every field required
}

// DecodeConfig reads a store configuration from TOML. A built-in variant is
// chosen by name, a custom one is given as a complete [Ethash] table.
// Missing keys keep the values of DefaultConfig on mainnet.
func DecodeConfig(r io.Reader) (Config, error) {
	fc := fileConfig{CachesInMem: DefaultConfig.CachesInMem}
	if err := toml.Decode(r, &fc); err != nil {
		return Config{}, err
	}
	return fc.config()
}

// LoadConfig is DecodeConfig on the named file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	config, err := DecodeConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

func (fc *fileConfig) config() (Config, error) {
	switch {
	case fc.Ethash != nil && fc.Variant != "":
		return Config{}, fmt.Errorf("%w: both variant %q and a custom table given", params.ErrInvalidEthashConfig, fc.Variant)
	case fc.Ethash != nil:
		if err := fc.Ethash.Validate(); err != nil {
			return Config{}, err
		}
		return Config{CachesInMem: fc.CachesInMem, Ethash: fc.Ethash}, nil
	}
	name := fc.Variant
	if name == "" {
		name = params.MainnetEthash.Name
	}
	variant, ok := params.EthashVariant(name)
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown variant %q, have %v", params.ErrInvalidEthashConfig, name, params.EthashVariants())
	}
	return Config{CachesInMem: fc.CachesInMem, Ethash: variant}, nil
}

// String encodes the configuration as TOML, naming built-in variants.
func (c Config) String() string {
	fc := fileConfig{CachesInMem: c.CachesInMem}
	switch builtin, ok := params.EthashVariant(variantName(c.Ethash)); {
	case c.Ethash == nil:
		fc.Variant = params.MainnetEthash.Name
	case ok && *builtin == *c.Ethash:
		fc.Variant = builtin.Name
	default:
		fc.Ethash = c.Ethash
	}
	out, err := toml.Marshal(fc)
	if err != nil {
		return fmt.Sprintf("Config{CachesInMem: %d, Ethash: %v}", c.CachesInMem, err)
	}
	return string(out)
}

func variantName(c *params.EthashConfig) string {
	if c == nil {
		return ""
	}
	return c.Name
}
