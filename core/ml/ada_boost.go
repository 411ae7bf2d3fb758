package ml

import (
	"math"

	"npr/common"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// a round error under this value is a perfect stump; clamping keeps alpha finite
const minRoundError = 1e-10

// Stump votes Polarity when X[Feature] > Threshold and -Polarity otherwise.
type Stump struct {
	Feature   int
	Threshold float64
	Polarity  float64
}

func (s Stump) Class(x []float64) float64 {
	if x[s.Feature] > s.Threshold {
		return s.Polarity
	}
	return -s.Polarity
}

// Round records one boosting step. WeightSum is the example weight total after renormalisation.
type Round struct {
	Stump     Stump
	Err       float64
	Alpha     float64
	WeightSum float64
}

type AdaBoostModel struct {
	stumps []Stump
	alphas []float64
}

// AdaBoost combines decision stumps into a weighted vote over two labels.
type AdaBoost struct {
	TrainSet  *DataSet
	Rounds    int
	Dimension int
	Log       common.Logger

	model    AdaBoostModel
	rounds   []Round
	weights  []float64
	neg, pos int
	majority int
	valid    bool
}

func NewAdaBoost(trainSet *DataSet, rounds, dimension int) *AdaBoost {
	return &AdaBoost{TrainSet: trainSet, Rounds: rounds, Dimension: dimension}
}

func (ab *AdaBoost) validate() error {
	if err := checkTrainSet("adaboost", ab.TrainSet); err != nil {
		return err
	}
	if ab.Rounds < 1 {
		return errors.Wrapf(ErrConfiguration, "adaboost: rounds must be >= 1, got %d", ab.Rounds)
	}
	if ab.Dimension < 1 || ab.Dimension != ab.TrainSet.Dimension() {
		return errors.Wrapf(ErrConfiguration, "adaboost: dimension %d does not match training set dimension %d",
			ab.Dimension, ab.TrainSet.Dimension())
	}
	return nil
}

func (ab *AdaBoost) Train() error {
	if err := ab.validate(); err != nil {
		return err
	}
	neg, pos, err := binaryLabels("adaboost", ab.TrainSet)
	if err != nil {
		return err
	}
	log := observer(ab.Log)
	ab.neg, ab.pos = neg, pos
	ab.majority = ab.TrainSet.majorityLabel()

	size := ab.TrainSet.Count()
	y := make([]float64, size)
	for i, e := range ab.TrainSet.Examples() {
		if e.Label.ID == pos {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	ab.weights = make([]float64, size)
	for i := range ab.weights {
		ab.weights[i] = 1.0 / float64(size)
	}
	sorted, orders := ab.sortFeatures()

	ab.model = AdaBoostModel{}
	ab.rounds = ab.rounds[:0]
	pred := make([]float64, size)
	for t := 0; t < ab.Rounds; t++ {
		stump := ab.bestStump(y, sorted, orders)

		em := 0.0
		for i, e := range ab.TrainSet.Examples() {
			pred[i] = stump.Class(e.X)
			if pred[i] != y[i] {
				em += ab.weights[i]
			}
		}
		if em >= 0.5 {
			log.Infof("adaboost: round %d error %.5f is no better than chance, stopping with %d stumps",
				t+1, em, len(ab.model.stumps))
			break
		}
		perfect := em < minRoundError
		if perfect {
			em = minRoundError
		}
		am := 0.5 * math.Log((1-em)/em)

		for i := range ab.weights {
			ab.weights[i] *= math.Exp(-am * y[i] * pred[i])
		}
		floats.Scale(1/floats.Sum(ab.weights), ab.weights)

		ab.model.stumps = append(ab.model.stumps, stump)
		ab.model.alphas = append(ab.model.alphas, am)
		ab.rounds = append(ab.rounds, Round{Stump: stump, Err: em, Alpha: am, WeightSum: floats.Sum(ab.weights)})
		log.Debugf("adaboost round %d: feature=%d threshold=%.5f polarity=%+.0f em=%.5f am=%.5f",
			t+1, stump.Feature, stump.Threshold, stump.Polarity, em, am)

		if perfect {
			log.Infof("adaboost: round %d stump separates the training set, stopping", t+1)
			break
		}
	}

	ab.valid = true
	log.Infof("adaboost trained: %d of %d rounds", len(ab.model.stumps), ab.Rounds)
	return nil
}

// sortFeatures returns, per feature, the ascending values and the example index of each.
func (ab *AdaBoost) sortFeatures() ([][]float64, [][]int) {
	size := ab.TrainSet.Count()
	sorted := make([][]float64, ab.Dimension)
	orders := make([][]int, ab.Dimension)
	for f := 0; f < ab.Dimension; f++ {
		sorted[f] = make([]float64, size)
		orders[f] = make([]int, size)
		for i, e := range ab.TrainSet.Examples() {
			sorted[f][i] = e.X[f]
		}
		floats.Argsort(sorted[f], orders[f])
	}
	return sorted, orders
}

// bestStump scans every feature and every threshold between distinct values, keeping the first
// stump with the lowest weighted error. Moving one example at a time below the threshold updates
// the error incrementally.
func (ab *AdaBoost) bestStump(y []float64, sorted [][]float64, orders [][]int) Stump {
	total := floats.Sum(ab.weights)
	best := Stump{Threshold: math.Inf(-1), Polarity: 1}
	bestErr := math.Inf(1)

	consider := func(f int, threshold, errPos float64) {
		errPos = math.Max(0, math.Min(total, errPos))
		if errPos < bestErr {
			best, bestErr = Stump{Feature: f, Threshold: threshold, Polarity: 1}, errPos
		}
		if errNeg := total - errPos; errNeg < bestErr {
			best, bestErr = Stump{Feature: f, Threshold: threshold, Polarity: -1}, errNeg
		}
	}

	for f := 0; f < ab.Dimension; f++ {
		vals, order := sorted[f], orders[f]
		// every example above the threshold: polarity +1 misses the negatives
		errPos := 0.0
		for i, yi := range y {
			if yi < 0 {
				errPos += ab.weights[i]
			}
		}
		consider(f, math.Inf(-1), errPos)

		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			if y[i] > 0 {
				errPos += ab.weights[i]
			} else {
				errPos -= ab.weights[i]
			}
			if vals[k+1] == vals[k] {
				continue
			}
			consider(f, (vals[k]+vals[k+1])/2, errPos)
		}
	}
	return best
}

func (ab *AdaBoost) Predict(x []float64) (int, error) {
	if err := checkInput("adaboost", ab.valid, ab.Dimension, x); err != nil {
		return 0, err
	}
	res := 0.0
	for i, s := range ab.model.stumps {
		res += ab.model.alphas[i] * s.Class(x)
	}
	switch {
	case res > 0:
		return ab.pos, nil
	case res < 0:
		return ab.neg, nil
	}
	return ab.majority, nil
}

// History returns one entry per accepted boosting round.
func (ab *AdaBoost) History() []Round {
	return ab.rounds
}
