package ml

import (
	"sort"

	"npr/common"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// KNN predicts the majority label among the K closest training examples.
// The borrowed training set is the whole model.
type KNN struct {
	K        int
	TrainSet *DataSet
	Log      common.Logger

	trained bool
}

func NewKNN(trainSet *DataSet, k int) *KNN {
	return &KNN{K: k, TrainSet: trainSet}
}

func (m *KNN) Train() error {
	if err := checkTrainSet("knn", m.TrainSet); err != nil {
		return err
	}
	if m.K < 1 || m.K > m.TrainSet.Count() {
		return errors.Wrapf(ErrConfiguration, "knn: K=%d out of range [1, %d]", m.K, m.TrainSet.Count())
	}
	m.trained = true
	observer(m.Log).Debugf("knn ready: K=%d, %d training examples", m.K, m.TrainSet.Count())
	return nil
}

type neighbor struct {
	d     float64
	index int
}

func (m *KNN) Predict(x []float64) (int, error) {
	var dim int
	if m.TrainSet != nil {
		dim = m.TrainSet.Dimension()
	}
	if err := checkInput("knn", m.trained, dim, x); err != nil {
		return 0, err
	}

	nbrs := m.nearest(x)

	// votes are counted in selection order, so the first label to reach the
	// winning count is the one seen first among the neighbours
	counts := make(map[int]int, len(nbrs))
	order := make([]int, 0, len(nbrs))
	for _, n := range nbrs {
		id := m.TrainSet.At(n.index).Label.ID
		if _, ok := counts[id]; !ok {
			order = append(order, id)
		}
		counts[id]++
	}
	best := order[0]
	for _, id := range order[1:] {
		if counts[id] > counts[best] {
			best = id
		}
	}
	return best, nil
}

// nearest keeps a sorted list of at most K neighbours. A new candidate is placed
// after every neighbour at the same distance, so earlier training examples win ties.
func (m *KNN) nearest(x []float64) []neighbor {
	nbrs := make([]neighbor, 0, m.K+1)
	diff := make([]float64, len(x))
	for i, e := range m.TrainSet.Examples() {
		floats.SubTo(diff, x, e.X)
		d := floats.Dot(diff, diff)
		if len(nbrs) == m.K && d >= nbrs[len(nbrs)-1].d {
			continue
		}
		pos := sort.Search(len(nbrs), func(j int) bool { return nbrs[j].d > d })
		nbrs = append(nbrs, neighbor{})
		copy(nbrs[pos+1:], nbrs[pos:])
		nbrs[pos] = neighbor{d: d, index: i}
		if len(nbrs) > m.K {
			nbrs = nbrs[:m.K]
		}
	}
	return nbrs
}
