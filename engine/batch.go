package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

var ErrTooManyCommands = errors.New("engine: too many commands in batch")

// BatchRunner processes several commands on a bounded worker pool. Every
// command still passes the engine's admission window.
type BatchRunner struct {
	engine      *Engine
	workers     int
	maxCommands int
}

func NewBatchRunner(e *Engine, workers, maxCommands int) *BatchRunner {
	if workers <= 0 {
		workers = 1
	}
	return &BatchRunner{engine: e, workers: workers, maxCommands: maxCommands}
}

// Run returns one Response per command, in input order.
func (b *BatchRunner) Run(ctx context.Context, commands []string) ([]Response, error) {
	if b.maxCommands > 0 && len(commands) > b.maxCommands {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCommands, len(commands), b.maxCommands)
	}
	if len(commands) == 0 {
		return []Response{}, nil
	}

	pool, err := ants.NewPool(b.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch worker pool: %w", err)
	}
	defer pool.Release()

	out := make([]Response, len(commands))
	var wg sync.WaitGroup
	errCh := make(chan error, len(commands))

	for i, cmd := range commands {
		wg.Add(1)
		idx, text := i, cmd
		err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errCh <- err
				return
			}
			out[idx] = b.engine.Process(ctx, text)
		})
		if err != nil {
			wg.Done()
			errCh <- fmt.Errorf("submit batch command %d: %w", idx, err)
		}
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return nil, err
	}
	return out, nil
}
