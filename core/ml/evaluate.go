package ml

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Score is the held-out accuracy of a trained classifier.
type Score struct {
	Hits     int
	Total    int
	Accuracy float64
}

func newScore(hits, total int) Score {
	s := Score{Hits: hits, Total: total}
	if total > 0 {
		s.Accuracy = float64(hits) / float64(total)
	}
	return s
}

func Evaluate(c Classifier, set *DataSet) (Score, error) {
	hits := 0
	for i, e := range set.Examples() {
		id, err := c.Predict(e.X)
		if err != nil {
			return Score{}, errors.Wrapf(err, "evaluate example %d", i)
		}
		if id == e.Label.ID {
			hits++
		}
	}
	return newScore(hits, set.Count()), nil
}

// EvaluateParallel splits the set into contiguous chunks, one per worker.
// workers <= 0 uses GOMAXPROCS. The result equals Evaluate's.
func EvaluateParallel(c Classifier, set *DataSet, workers int) (Score, error) {
	n := set.Count()
	if n == 0 {
		return Score{}, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rowsPerWorker := (n + workers - 1) / workers

	hits := make([]int, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				ex := set.At(i)
				id, err := c.Predict(ex.X)
				if err != nil {
					errs[w] = errors.Wrapf(err, "evaluate example %d", i)
					return
				}
				if id == ex.Label.ID {
					hits[w]++
				}
			}
		}(w, start, end)
	}
	wg.Wait()

	total := 0
	for w := range hits {
		if errs[w] != nil {
			return Score{}, errs[w]
		}
		total += hits[w]
	}
	return newScore(total, n), nil
}
