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

import "errors"

var (
	// ErrInvalidEpoch is returned for an epoch whose cache or dataset would
	// not be addressable with 32 bit item indices (or the platform int).
	ErrInvalidEpoch = errors.New("invalid epoch")

	// ErrInvalidCacheSize is returned when a cache buffer is empty, is not a
	// whole number of 64 byte items, or does not match its epoch.
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidDatasetParameters is returned by hashimoto when the dataset
	// size is not a whole number of 128 byte pages or the cache cannot
	// produce dataset items.
	ErrInvalidDatasetParameters = errors.New("invalid dataset parameters")
)
