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

// Package dagcache keeps light DAGs of recent epochs in memory and decides
// when they are built. The ethash package itself never caches or prefetches.
package dagcache

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/aquachain/ethashlight/common"
	"gitlab.com/aquachain/ethashlight/common/log"
	"gitlab.com/aquachain/ethashlight/consensus/ethash"
	"gitlab.com/aquachain/ethashlight/params"
)

// ErrConfigMismatch is returned by Add for a DAG built with another variant.
var ErrConfigMismatch = errors.New("dag built for a different ethash variant")

// Config are the configuration parameters of a Store.
type Config struct {
	CachesInMem int                  // Epochs kept in memory, at least one
	Ethash      *params.EthashConfig // Network variant, mainnet if nil
}

// DefaultConfig keeps the current, the previous and one future epoch.
var DefaultConfig = Config{CachesInMem: 3}

// entry wraps a light DAG so concurrent users of one epoch share a single
// generation.
type entry struct {
	epoch uint64
	once  sync.Once
	dag   *ethash.LightDAG
	err   error
}

// Store is a least recently used set of light DAGs keyed by epoch.
type Store struct {
	config  *params.EthashConfig
	caches  *lru.Cache
	pending mapset.Set // Epochs being prefetched
	metrics *metrics
	wg      sync.WaitGroup

	lock sync.Mutex // Serializes lookups with inserts
}

// New creates a store holding up to config.CachesInMem epochs.
func New(config Config) *Store {
	if config.CachesInMem <= 0 {
		log.Warn("One ethash cache must always be in memory", "requested", config.CachesInMem)
		config.CachesInMem = 1
	}
	variant := params.MainnetEthash
	if config.Ethash != nil {
		variant = config.Ethash.Copy()
	}
	s := &Store{
		config:  variant,
		pending: mapset.NewSet(),
		metrics: newMetrics(variant.Name),
	}
	// The size is positive, so NewWithEvict cannot fail
	s.caches, _ = lru.NewWithEvict(config.CachesInMem, func(key, value interface{}) {
		log.Trace("Evicted ethash cache", "epoch", key)
		s.metrics.evictions.Inc()
	})
	return s
}

// Config returns the network variant of the store.
func (s *Store) Config() *params.EthashConfig {
	return s.config
}

// Collectors returns the prometheus collectors of the store for registration.
func (s *Store) Collectors() []prometheus.Collector {
	return s.metrics.collectors()
}

// get retrieves or creates the entry of an epoch without generating it.
func (s *Store) get(epoch uint64) (*entry, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if item, ok := s.caches.Get(epoch); ok {
		return item.(*entry), true
	}
	log.Trace("Requiring new ethash cache", "epoch", epoch)
	e := &entry{epoch: epoch}
	s.caches.Add(epoch, e)
	s.metrics.cached.Set(float64(s.caches.Len()))
	return e, false
}

// generate ensures that the DAG of e is built before use. A failed epoch is
// dropped from the store so it does not occupy a slot.
func (s *Store) generate(e *entry) (*ethash.LightDAG, error) {
	e.once.Do(func() {
		start := time.Now()
		if last := ethash.MaxEpoch(s.config); e.epoch > last {
			e.err = fmt.Errorf("%w: epoch %d is beyond %d", ethash.ErrInvalidEpoch, e.epoch, last)
		} else {
			e.dag, e.err = ethash.New(e.epoch*s.config.EpochLength(), s.config)
		}
		if e.err != nil {
			s.metrics.failures.Inc()
			log.Warn("Failed to generate ethash cache", "epoch", e.epoch, "err", e.err)
			s.forget(e)
			return
		}
		elapsed := time.Since(start)
		s.metrics.generations.Inc()
		s.metrics.genSeconds.Observe(elapsed.Seconds())
		log.Debug("Ethash cache ready", "epoch", e.epoch, "size", e.dag.CacheSize(), "elapsed", common.PrettyDuration(elapsed))
	})
	return e.dag, e.err
}

// forget removes e unless its slot was already taken over by another entry.
func (s *Store) forget(e *entry) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if item, ok := s.caches.Peek(e.epoch); ok && item.(*entry) == e {
		s.caches.Remove(e.epoch)
		s.metrics.cached.Set(float64(s.caches.Len()))
	}
}

// DAG returns the light DAG of the epoch block number belongs to, generating
// it if needed. Concurrent callers of one epoch wait for the same generation.
func (s *Store) DAG(number uint64) (*ethash.LightDAG, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	e, hit := s.get(s.config.Epoch(number))
	if hit {
		s.metrics.hits.Inc()
	} else {
		s.metrics.misses.Inc()
	}
	return s.generate(e)
}

// Add inserts a DAG reconstructed by the caller, e.g. with ethash.FromCache,
// replacing any entry of the same epoch.
func (s *Store) Add(dag *ethash.LightDAG) error {
	if *dag.Config() != *s.config {
		return fmt.Errorf("%w: have %q, want %q", ErrConfigMismatch, dag.Config().Name, s.config.Name)
	}
	e := &entry{epoch: dag.Epoch()}
	e.once.Do(func() { e.dag = dag })

	s.lock.Lock()
	defer s.lock.Unlock()

	s.caches.Add(e.epoch, e)
	s.metrics.cached.Set(float64(s.caches.Len()))
	return nil
}

// Prefetch starts generating an epoch in the background. It reports false
// if the epoch is already in memory or being prefetched.
func (s *Store) Prefetch(epoch uint64) bool {
	s.lock.Lock()
	present := s.caches.Contains(epoch)
	s.lock.Unlock()
	if present || !s.pending.Add(epoch) {
		return false
	}
	log.Trace("Prefetching ethash cache", "epoch", epoch)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.pending.Remove(epoch)

		e, _ := s.get(epoch)
		s.generate(e)
	}()
	return true
}

// Wait blocks until all prefetches started so far are done.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Evict drops an epoch from memory, reporting whether it was present.
func (s *Store) Evict(epoch uint64) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	present := s.caches.Remove(epoch)
	s.metrics.cached.Set(float64(s.caches.Len()))
	return present
}

// Len returns the number of epochs held.
func (s *Store) Len() int {
	return s.caches.Len()
}

// Epochs returns the epochs held, in ascending order.
func (s *Store) Epochs() []uint64 {
	keys := s.caches.Keys()
	epochs := make([]uint64, 0, len(keys))
	for _, key := range keys {
		epochs = append(epochs, key.(uint64))
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })
	return epochs
}
