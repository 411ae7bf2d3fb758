package ml

import (
	"sort"

	"github.com/pkg/errors"
)

type Label struct {
	ID int
}

// Example is one labelled feature vector. It is never modified after NewExample.
type Example struct {
	X     []float64
	Label Label
}

func NewExample(x []float64, label int) Example {
	cp := make([]float64, len(x))
	copy(cp, x)
	return Example{X: cp, Label: Label{ID: label}}
}

// DataSet keeps examples in insertion order so every scan over it is reproducible.
type DataSet struct {
	dimension int
	examples  []Example
}

func NewDataSet(dimension int) *DataSet {
	return &DataSet{dimension: dimension}
}

func (ds *DataSet) Add(x []float64, label int) error {
	if len(x) != ds.dimension {
		return errors.Wrapf(ErrDimensionMismatch, "add example: got %d features, want %d", len(x), ds.dimension)
	}
	ds.examples = append(ds.examples, NewExample(x, label))
	return nil
}

func (ds *DataSet) Count() int {
	return len(ds.examples)
}

func (ds *DataSet) Dimension() int {
	return ds.dimension
}

// Examples returns the backing slice. Callers must treat it as read-only.
func (ds *DataSet) Examples() []Example {
	return ds.examples
}

func (ds *DataSet) At(i int) Example {
	return ds.examples[i]
}

// Labels returns the distinct label ids in ascending order.
func (ds *DataSet) Labels() []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, e := range ds.examples {
		if _, ok := seen[e.Label.ID]; ok {
			continue
		}
		seen[e.Label.ID] = struct{}{}
		ids = append(ids, e.Label.ID)
	}
	sort.Ints(ids)
	return ids
}

func (ds *DataSet) LabelCounts() map[int]int {
	counts := make(map[int]int)
	for _, e := range ds.examples {
		counts[e.Label.ID]++
	}
	return counts
}

// majorityLabel returns the most frequent label, the smallest id on a tie.
func (ds *DataSet) majorityLabel() int {
	counts := ds.LabelCounts()
	best, bestCount := 0, -1
	for _, id := range ds.Labels() {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}
	return best
}

// Problem is a train/validation split sharing one dimension.
type Problem struct {
	Dimension     int
	TrainingSet   *DataSet
	ValidationSet *DataSet
}

func NewProblem(training, validation *DataSet) (*Problem, error) {
	if training == nil || validation == nil {
		return nil, errors.New("problem needs both a training and a validation set")
	}
	if training.Dimension() != validation.Dimension() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "training dimension %d, validation dimension %d",
			training.Dimension(), validation.Dimension())
	}
	return &Problem{
		Dimension:     training.Dimension(),
		TrainingSet:   training,
		ValidationSet: validation,
	}, nil
}
