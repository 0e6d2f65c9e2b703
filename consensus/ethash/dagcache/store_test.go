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
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/aquachain/ethashlight/common/log"
	"gitlab.com/aquachain/ethashlight/consensus/ethash"
	"gitlab.com/aquachain/ethashlight/params"
)

func init() {
	log.ResetForTesting()
}

func newTestStore(caches int) *Store {
	return New(Config{CachesInMem: caches, Ethash: params.TestEthash})
}

func TestStoreHitMiss(t *testing.T) {
	s := newTestStore(3)

	first, err := s.DAG(0)
	require.NoError(t, err)
	again, err := s.DAG(99)
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.Equal(t, uint64(0), first.Epoch())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.generations))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.cached))

	next, err := s.DAG(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next.Epoch())
	assert.Equal(t, []uint64{0, 1}, s.Epochs())
}

// Tests that the least recently used epoch is dropped once the store is full.
func TestStoreEviction(t *testing.T) {
	s := newTestStore(2)

	for _, number := range []uint64{0, 100, 0, 200} {
		_, err := s.DAG(number)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []uint64{0, 2}, s.Epochs())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.evictions))

	assert.True(t, s.Evict(2))
	assert.False(t, s.Evict(2))
	assert.Equal(t, []uint64{0}, s.Epochs())
}

func TestStoreMinimumSize(t *testing.T) {
	s := newTestStore(0)

	for _, number := range []uint64{0, 100, 200} {
		_, err := s.DAG(number)
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{2}, s.Epochs())
}

// Tests that concurrent requests for one epoch share a single generation.
func TestStoreConcurrentGeneration(t *testing.T) {
	s := newTestStore(1)

	const workers = 8
	dags := make([]*ethash.LightDAG, workers)

	var pend sync.WaitGroup
	for i := 0; i < workers; i++ {
		pend.Add(1)
		go func(idx int) {
			defer pend.Done()
			dag, err := s.DAG(uint64(idx))
			assert.NoError(t, err)
			dags[idx] = dag
		}(i)
	}
	pend.Wait()

	for _, dag := range dags {
		assert.Same(t, dags[0], dag)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.generations))
	assert.Equal(t, float64(workers), testutil.ToFloat64(s.metrics.hits)+testutil.ToFloat64(s.metrics.misses))
}

func TestStorePrefetch(t *testing.T) {
	s := newTestStore(3)

	assert.True(t, s.Prefetch(3))
	assert.False(t, s.Prefetch(3))
	s.Wait()

	assert.False(t, s.Prefetch(3))
	assert.Equal(t, []uint64{3}, s.Epochs())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.generations))

	dag, err := s.DAG(300)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), dag.Epoch())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.generations))
}

// Tests that an epoch which cannot be generated does not occupy the store.
func TestStorePrefetchInvalid(t *testing.T) {
	s := newTestStore(3)

	assert.True(t, s.Prefetch(ethash.MaxEpoch(params.TestEthash)+1))
	s.Wait()

	assert.Zero(t, s.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.failures))
	assert.Zero(t, testutil.ToFloat64(s.metrics.generations))
}

func TestStoreInvalidConfig(t *testing.T) {
	bad := params.TestEthash.Copy()
	bad.LoopAccesses = 0

	s := New(Config{CachesInMem: 1, Ethash: bad})
	_, err := s.DAG(0)
	assert.ErrorIs(t, err, params.ErrInvalidEthashConfig)
	assert.Zero(t, s.Len())
}

func TestStoreAdd(t *testing.T) {
	s := newTestStore(3)

	cache, err := ethash.MakeCache(params.TestEthash, 5)
	require.NoError(t, err)
	dag, err := ethash.FromCache(cache, 500, params.TestEthash)
	require.NoError(t, err)

	require.NoError(t, s.Add(dag))
	have, err := s.DAG(599)
	require.NoError(t, err)
	assert.Same(t, dag, have)
	assert.Zero(t, testutil.ToFloat64(s.metrics.generations))

	size, err := ethash.CacheSize(nil, 0)
	require.NoError(t, err)
	other, err := ethash.FromCache(make([]byte, size), 0, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Add(other), ErrConfigMismatch)
	assert.Equal(t, []uint64{5}, s.Epochs())
}

func TestStoreDefaults(t *testing.T) {
	s := New(DefaultConfig)
	assert.Equal(t, params.MainnetEthash.Name, s.Config().Name)

	reg := prometheus.NewRegistry()
	for _, c := range s.Collectors() {
		require.NoError(t, reg.Register(c))
	}
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, len(s.Collectors()))
}
