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
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gitlab.com/aquachain/ethashlight/common"
	"gitlab.com/aquachain/ethashlight/consensus/ethash"
)

// Work is one header hash and nonce pair to verify.
type Work struct {
	Hash  common.Hash
	Nonce uint64
}

// Result holds the hashimoto output of one Work.
type Result struct {
	MixDigest common.Hash
	Result    common.Hash
}

// VerifyBatch runs hashimoto for every work item against dag on up to
// GOMAXPROCS goroutines. Results are returned in the order of work. The
// context is checked between items, an item already being hashed runs to
// completion.
func VerifyBatch(ctx context.Context, dag *ethash.LightDAG, work []Work) ([]Result, error) {
	results := make([]Result, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range work {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mix, result, err := dag.Hashimoto(work[i].Hash, work[i].Nonce)
			if err != nil {
				return err
			}
			results[i] = Result{MixDigest: mix, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Wait returns nil if ctx was cancelled before any item started
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Verify fetches the DAG of block number and verifies work against it.
func (s *Store) Verify(ctx context.Context, number uint64, work []Work) ([]Result, error) {
	dag, err := s.DAG(number)
	if err != nil {
		return nil, err
	}
	return VerifyBatch(ctx, dag, work)
}
