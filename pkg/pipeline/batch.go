package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a request's position with its outcome.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// RunBatch runs reqs with at most concurrency requests in flight. Results are
// returned in request order. A failing request never cancels the others; only
// ctx does. A concurrency below one uses GOMAXPROCS.
func (p *Pipeline) RunBatch(ctx context.Context, reqs []Request, concurrency int) []BatchResult {
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	results := make([]BatchResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range reqs {
		i := i
		g.Go(func() error {
			res, err := p.Run(ctx, reqs[i])
			results[i] = BatchResult{Index: i, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
