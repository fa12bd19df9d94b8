package tree

import (
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xindex/xlog"
)

const defaultChunksPerWorker = 4

type parallelCfg struct {
	logger          xlog.XLogger
	chunksPerWorker int
}

type ParallelOpt func(*parallelCfg)

// WithParallelLogger routes the pool diagnostics into logger.
func WithParallelLogger(logger xlog.XLogger) ParallelOpt {
	return func(cfg *parallelCfg) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithChunksPerWorker sets how many pieces per worker the sequence is split
// into before draining.
func WithChunksPerWorker(n int) ParallelOpt {
	return func(cfg *parallelCfg) {
		if n > 0 {
			cfg.chunksPerWorker = n
		}
	}
}

// splitChunks splits the sequence round by round until there are enough
// chunks or nothing can be split any more. The chunks are returned in
// emission order.
func splitChunks[K, V, A any](seq *Seq[K, V, A], target int) []*Seq[K, V, A] {
	chunks := []*Seq[K, V, A]{seq}
	for len(chunks) < target {
		next := make([]*Seq[K, V, A], 0, len(chunks)*2)
		total, split := len(chunks), false
		for _, chunk := range chunks {
			next = append(next, chunk)
			if total >= target {
				continue
			}
			if detached := chunk.TrySplit(); detached != nil {
				next = append(next, detached)
				total++
				split = true
			}
		}
		chunks = next
		if !split {
			break
		}
	}
	return chunks
}

// ParallelForEach drains seq on an ants pool of the given size (GOMAXPROCS
// when workers <= 0). The sequence is split into independent chunks first.
// Each chunk stops at its first error and the errors of all chunks are
// merged. The tree must not be mutated until it returns.
func ParallelForEach[K, V, A any](
	seq *Seq[K, V, A],
	workers int,
	fn func(node RBNode[K, V, A]) error,
	opts ...ParallelOpt,
) error {
	if seq == nil || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	cfg := &parallelCfg{
		logger:          xlog.NewNopXLogger(),
		chunksPerWorker: defaultChunksPerWorker,
	}
	for _, o := range opts {
		o(cfg)
	}

	chunks := splitChunks(seq, workers*cfg.chunksPerWorker)
	pool, err := ants.NewPool(workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(cfg.logger)),
	)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		errs = make([]error, len(chunks))
	)
	for i, chunk := range chunks {
		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()
			for node, ok := chunk.Next(); ok; node, ok = chunk.Next() {
				if errs[i] = fn(node); errs[i] != nil {
					return
				}
			}
		}); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	merr := multierr.Combine(errs...)
	cfg.logger.Debug("[xrbtree] parallel drain finished",
		zap.Int("workers", workers),
		zap.Int("chunks", len(chunks)),
		zap.Bool("failed", merr != nil),
	)
	return merr
}
