package match

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/rgmatch/internal/genome"
)

// Channel bounds for the parallel pipeline. The work channel stays small
// to keep memory flat; the result channel is wide enough that a slow
// writer does not stall the workers.
const (
	workChannelCap   = 100
	resultChannelCap = 2000
)

// WorkItem is one chunk of regions in file order.
type WorkItem struct {
	Seq     int
	Regions []genome.Region
}

// RegionResult pairs a region with its reduced candidates.
type RegionResult struct {
	Region     genome.Region
	Candidates []Candidate
}

// WorkResult holds the output for one chunk.
type WorkResult struct {
	Seq     int
	Results []RegionResult
}

// matchParallel matches work items using a pool of workers. Results are
// sent to the returned channel in arrival order (not sequence order); use
// OrderedCollect to consume them in sequence-number order. If workers is
// 0, runtime.NumCPU() is used.
func (m *Matcher) matchParallel(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, resultChannelCap)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			var cur cursor
			for item := range items {
				out := make([]RegionResult, 0, len(item.Regions))
				for _, region := range item.Regions {
					cands := m.matchOne(region, &cur)
					if len(cands) == 0 {
						continue
					}
					out = append(out, RegionResult{Region: region, Candidates: cands})
				}
				results <- WorkResult{Seq: item.Seq, Results: out}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// runParallel reads chunks on a producer goroutine, fans them out to the
// worker pool, and writes results in sequence order on the calling
// goroutine. The metadata column count for the header travels on a one-shot
// channel because it is only known after the first chunk is read.
func (m *Matcher) runParallel(src RegionSource, w ResultWriter, workers, batchSize int) error {
	work := make(chan WorkItem, workChannelCap)
	header := make(chan int, 1)

	var readErr error
	regionCount := 0

	go func() {
		defer close(work)
		seq := 0
		for {
			chunk, err := src.ReadChunk(batchSize)
			if err != nil {
				readErr = fmt.Errorf("read regions: %w", err)
				if seq == 0 {
					header <- 0
				}
				return
			}
			if chunk == nil {
				if seq == 0 {
					header <- 0
				}
				return
			}
			if seq == 0 {
				header <- src.MetaColumns()
			}
			regionCount += len(chunk)
			work <- WorkItem{Seq: seq, Regions: chunk}
			seq++
		}
	}()

	results := m.matchParallel(work, workers)

	if err := w.WriteHeader(<-header); err != nil {
		for range results {
		}
		return err
	}

	if err := OrderedCollect(results, func(r WorkResult) error {
		for _, rr := range r.Results {
			for _, c := range rr.Candidates {
				if err := w.Write(rr.Region, c); err != nil {
					return fmt.Errorf("write result: %w", err)
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if readErr != nil {
		return readErr
	}

	m.logger.Info("matching done",
		zap.Int("regions", regionCount),
		zap.Int("workers", workers),
		zap.String("mode", "parallel"))

	return w.Flush()
}
