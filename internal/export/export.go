package export

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"autosales/internal/metrics"
)

// Sink is one output of a run.
type Sink struct {
	Name  string
	Write func(ctx context.Context) error
}

// Run executes sinks concurrently. The table they read must no longer be
// mutated. The first error cancels the context passed to the others and is
// returned, prefixed with the sink name.
func Run(ctx context.Context, job string, sinks ...Sink) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range sinks {
		g.Go(func() error {
			start := time.Now()
			err := s.Write(gctx)
			metrics.RecordStep(job, "export:"+s.Name, err, time.Since(start))
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			log.Printf("export: sink=%s took=%s", s.Name, time.Since(start).Truncate(time.Millisecond))
			return nil
		})
	}
	return g.Wait()
}
