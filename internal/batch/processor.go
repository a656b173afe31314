// Package batch runs independent jobs on a bounded worker pool.
package batch

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls one batch run.
type Config struct {
	Workers int
	// Progress, when set, receives a rate line every ProgressEvery.
	Progress      io.Writer
	ProgressEvery time.Duration
	Label         string
}

// Result holds the outcome of one job.
type Result struct {
	Index   int
	Success bool
	Error   string
}

// Run calls job for every index in [0, n) and returns results in index
// order.
func Run(cfg Config, n int, job func(i int) error) []Result {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	label := cfg.Label
	if label == "" {
		label = "jobs"
	}

	results := make([]Result, n)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	if cfg.Progress != nil {
		every := cfg.ProgressEvery
		if every <= 0 {
			every = 2 * time.Second
		}
		go func() {
			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f %s/sec\n", p, n, rate, label)
					}
				}
			}
		}()
	}

	idxChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxChan {
				results[idx] = runOne(idx, job)
				processed.Add(1)
			}
		}()
	}

	for i := 0; i < n; i++ {
		idxChan <- i
	}
	close(idxChan)

	wg.Wait()
	close(done)
	return results
}

func runOne(idx int, job func(i int) error) (r Result) {
	r.Index = idx
	defer func() {
		if p := recover(); p != nil {
			r.Success = false
			r.Error = fmt.Sprintf("panic: %v", p)
		}
	}()
	if err := job(idx); err != nil {
		r.Error = err.Error()
		return r
	}
	r.Success = true
	return r
}

// Failed returns the results that did not succeed.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}
