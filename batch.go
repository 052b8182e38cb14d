package embedkit

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// DefaultBatchThreshold is the batch size above which embedding fans out to
// parallel workers. At or below it, texts are embedded sequentially; both
// paths produce identical results for a deterministic encoder.
const DefaultBatchThreshold = 10

// EmbedBatch embeds texts directly through enc, without any caching. Results
// are positional: out[i] corresponds to texts[i]. Per-item encoder failures
// do not abort the batch; failed positions are nil and all failures are
// joined into the returned error.
//
// Batches larger than DefaultBatchThreshold fan out over up to
// runtime.NumCPU() workers. Embedding is a pure function of the text, so
// ordering of the parallel path is unobservable in the results.
func EmbedBatch(ctx context.Context, enc Encoder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	embed := func(i int) {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			return
		}
		vec, err := enc.EmbedText(texts[i])
		if err != nil {
			errs[i] = fmt.Errorf("embed %q: %w", texts[i], err)
			return
		}
		out[i] = vec
	}

	fanOut(len(texts), DefaultBatchThreshold, runtime.NumCPU(), embed)

	return out, errors.Join(errs...)
}

// fanOut runs fn(0..n-1), sequentially when n <= threshold, otherwise on a
// bounded pool of workers.
func fanOut(n, threshold, workers int, fn func(i int)) {
	if n <= threshold || workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	jobs := make(chan int)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
