// Package runner drives the variant-to-myth pipeline end to end,
// either serially or with a worker pool, and feeds completed myths to
// a sink.
package runner

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mythos-bio/vmyth/internal/myth"
	"github.com/mythos-bio/vmyth/internal/variant"
)

// DefaultBatchSize is the serial runner's default sink batch size.
const DefaultBatchSize = 1 << 13

// Source yields variants one at a time, returning io.EOF when
// exhausted.
type Source interface {
	Next() (variant.Variant, error)
}

// Sink receives completed myths in arbitrary batches and is flushed
// and finalised once the run completes.
type Sink interface {
	Write(myths []myth.Myth) error
	Flush() error
}

// Runner streams variants from a Source through an Assembler into a
// Sink.
type Runner struct {
	source    Source
	assembler *myth.Assembler
	sink      Sink
	log       *zap.Logger
	batchSize int
}

// New builds a Runner. A nil logger defaults to a no-op logger and
// batchSize <= 0 defaults to DefaultBatchSize.
func New(source Source, assembler *myth.Assembler, sink Sink, log *zap.Logger, batchSize int) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Runner{source: source, assembler: assembler, sink: sink, log: log, batchSize: batchSize}
}

// RunSerial pulls variants from the source in order, computes each
// myth and batches them into the sink. Output order equals input
// order.
func (r *Runner) RunSerial(ctx context.Context) error {
	batch := make([]myth.Myth, 0, r.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.sink.Write(batch); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			break
		}
		v, err := r.source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read variant: %w", err)
		}

		batch = append(batch, r.assembler.Myth(v))
		if len(batch) >= r.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return r.sink.Flush()
}

// RunParallel drives a pool of workers pulling variants through an
// internal channel bridge; each worker computes myths independently
// against the shared, immutable assembler state, and a single writer
// goroutine drains completed myths into the sink in arrival order.
// Output order is therefore not guaranteed to match input order.
// Lifecycle and error propagation across the reader, worker and writer
// goroutines go through an errgroup.Group: the first error returned by
// any of them cancels the derived context, which unblocks the others'
// channel sends so the group can converge without deadlocking.
func (r *Runner) RunParallel(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	variants := make(chan variant.Variant, 2*workers)
	myths := make(chan myth.Myth, 2*workers)

	g.Go(func() error {
		defer close(variants)
		for {
			v, err := r.source.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read variant: %w", err)
			}
			select {
			case variants <- v:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	var workersDone sync.WaitGroup
	workersDone.Add(workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			defer workersDone.Done()
			for v := range variants {
				select {
				case myths <- r.assembler.Myth(v):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		workersDone.Wait()
		close(myths)
	}()

	g.Go(func() error {
		batch := make([]myth.Myth, 0, r.batchSize)
		for m := range myths {
			batch = append(batch, m)
			if len(batch) >= r.batchSize {
				if err := r.sink.Write(batch); err != nil {
					return fmt.Errorf("write batch: %w", err)
				}
				batch = batch[:0]
			}
		}
		if len(batch) > 0 {
			return r.sink.Write(batch)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return r.sink.Flush()
}
