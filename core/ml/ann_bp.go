package ml

import (
	"math"
	"math/rand"

	"npr/common"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultANNMaximumIteration = 10000
	DefaultANNEta              = 0.5
	DefaultANNEpsilon          = 1e-3
	DefaultANNLogInterval      = 1000
	DefaultANNSeed             = 1
)

// DefaultHiddenUnits sizes the hidden layer from the input dimension.
func DefaultHiddenUnits(dimension int) int {
	if h := 10 * dimension; h > 8 {
		return h
	}
	return 8
}

// ANNBP is a fully connected input-hidden-output sigmoid network trained
// by online backpropagation. It has one output unit per training label.
type ANNBP struct {
	TrainSet  *DataSet
	Dimension int
	Hidden    int

	// MaximumIteration caps the number of epochs.
	MaximumIteration int
	// Eta is the learning rate. Too large a value diverges; only the epoch cap stops it.
	Eta float64
	// Epsilon ends training once the epoch's mean squared error drops below it.
	Epsilon float64
	// LogInterval reports progress every LogInterval epochs, 0 disables it.
	LogInterval int
	// Seed drives weight initialisation and the per-epoch example order.
	Seed int64
	Log  common.Logger

	labels []int
	mean   []float64
	std    []float64

	w1 *mat.Dense // Hidden x Dimension
	b1 *mat.VecDense
	w2 *mat.Dense // len(labels) x Hidden
	b2 *mat.VecDense

	errs      []float64
	converged bool
	trained   bool
}

func NewANNBP(dimension int, trainSet *DataSet) *ANNBP {
	return &ANNBP{
		TrainSet:         trainSet,
		Dimension:        dimension,
		Hidden:           DefaultHiddenUnits(dimension),
		MaximumIteration: DefaultANNMaximumIteration,
		Eta:              DefaultANNEta,
		Epsilon:          DefaultANNEpsilon,
		LogInterval:      DefaultANNLogInterval,
		Seed:             DefaultANNSeed,
	}
}

func (a *ANNBP) validate() error {
	if err := checkTrainSet("ann", a.TrainSet); err != nil {
		return err
	}
	if a.Dimension < 1 || a.Dimension != a.TrainSet.Dimension() {
		return errors.Wrapf(ErrConfiguration, "ann: dimension %d does not match training set dimension %d",
			a.Dimension, a.TrainSet.Dimension())
	}
	if a.Hidden < 1 {
		return errors.Wrapf(ErrConfiguration, "ann: hidden units must be >= 1, got %d", a.Hidden)
	}
	if a.MaximumIteration < 1 {
		return errors.Wrapf(ErrConfiguration, "ann: MaximumIteration must be >= 1, got %d", a.MaximumIteration)
	}
	if !(a.Eta > 0) || math.IsInf(a.Eta, 0) {
		return errors.Wrapf(ErrConfiguration, "ann: learning rate must be positive and finite, got %v", a.Eta)
	}
	if a.Epsilon < 0 || math.IsNaN(a.Epsilon) {
		return errors.Wrapf(ErrConfiguration, "ann: epsilon must be >= 0, got %v", a.Epsilon)
	}
	if a.LogInterval < 0 {
		return errors.Wrapf(ErrConfiguration, "ann: LogInterval must be >= 0, got %d", a.LogInterval)
	}
	return nil
}

func (a *ANNBP) Train() error {
	if err := a.validate(); err != nil {
		return err
	}
	log := observer(a.Log)
	rng := rand.New(rand.NewSource(a.Seed))

	a.labels = a.TrainSet.Labels()
	outputs := len(a.labels)
	unit := make(map[int]int, outputs)
	for i, id := range a.labels {
		unit[id] = i
	}

	a.fitScaler()
	n := a.TrainSet.Count()
	inputs := make([]*mat.VecDense, n)
	targets := make([]*mat.VecDense, n)
	for i, e := range a.TrainSet.Examples() {
		inputs[i] = a.scale(e.X)
		targets[i] = mat.NewVecDense(outputs, nil)
		targets[i].SetVec(unit[e.Label.ID], 1)
	}

	a.w1 = randomDense(rng, a.Hidden, a.Dimension)
	a.b1 = mat.NewVecDense(a.Hidden, nil)
	a.w2 = randomDense(rng, outputs, a.Hidden)
	a.b2 = mat.NewVecDense(outputs, nil)

	h := mat.NewVecDense(a.Hidden, nil)
	o := mat.NewVecDense(outputs, nil)
	dh := mat.NewVecDense(a.Hidden, nil)
	do := mat.NewVecDense(outputs, nil)

	a.errs = a.errs[:0]
	a.converged = false
	// zero-based so MaximumIteration may be math.MaxInt
	for epoch := 0; epoch < a.MaximumIteration; epoch++ {
		for _, i := range rng.Perm(n) {
			a.forward(inputs[i], h, o)
			a.backward(inputs[i], targets[i], h, o, dh, do)
		}

		e := a.meanSquaredError(inputs, targets, h, o)
		a.errs = append(a.errs, e)
		if a.LogInterval > 0 && (epoch+1)%a.LogInterval == 0 {
			log.Infof("ann epoch %d: mse=%.6f", epoch+1, e)
		}
		if e < a.Epsilon {
			a.converged = true
			break
		}
	}
	if !a.converged {
		log.Infof("ann: reached %d epochs with mse %.6f above epsilon %g",
			a.MaximumIteration, a.errs[len(a.errs)-1], a.Epsilon)
	}
	a.trained = true
	log.Infof("ann trained: %d epochs, %d-%d-%d topology", len(a.errs), a.Dimension, a.Hidden, outputs)
	return nil
}

// randomDense draws small weights in (-1/sqrt(cols), 1/sqrt(cols)) so hidden units start apart.
func randomDense(rng *rand.Rand, rows, cols int) *mat.Dense {
	r := 1 / math.Sqrt(float64(cols))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * r
	}
	return mat.NewDense(rows, cols, data)
}

func (a *ANNBP) fitScaler() {
	n := a.TrainSet.Count()
	a.mean = make([]float64, a.Dimension)
	a.std = make([]float64, a.Dimension)
	col := make([]float64, n)
	for j := 0; j < a.Dimension; j++ {
		for i, e := range a.TrainSet.Examples() {
			col[i] = e.X[j]
		}
		m, s := stat.MeanStdDev(col, nil)
		if !(s > 0) {
			s = 1
		}
		a.mean[j], a.std[j] = m, s
	}
}

func (a *ANNBP) scale(x []float64) *mat.VecDense {
	v := mat.NewVecDense(len(x), nil)
	for j, xj := range x {
		v.SetVec(j, (xj-a.mean[j])/a.std[j])
	}
	return v
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func applySigmoid(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, sigmoid(v.AtVec(i)))
	}
}

func (a *ANNBP) forward(x, h, o *mat.VecDense) {
	h.MulVec(a.w1, x)
	h.AddVec(h, a.b1)
	applySigmoid(h)
	o.MulVec(a.w2, h)
	o.AddVec(o, a.b2)
	applySigmoid(o)
}

// backward applies one gradient step for the squared error 0.5*|o-t|^2.
func (a *ANNBP) backward(x, t, h, o, dh, do *mat.VecDense) {
	for k := 0; k < o.Len(); k++ {
		ok := o.AtVec(k)
		do.SetVec(k, (ok-t.AtVec(k))*ok*(1-ok))
	}
	dh.MulVec(a.w2.T(), do)
	for j := 0; j < h.Len(); j++ {
		hj := h.AtVec(j)
		dh.SetVec(j, dh.AtVec(j)*hj*(1-hj))
	}

	a.w2.RankOne(a.w2, -a.Eta, do, h)
	a.b2.AddScaledVec(a.b2, -a.Eta, do)
	a.w1.RankOne(a.w1, -a.Eta, dh, x)
	a.b1.AddScaledVec(a.b1, -a.Eta, dh)
}

func (a *ANNBP) meanSquaredError(inputs, targets []*mat.VecDense, h, o *mat.VecDense) float64 {
	sum := 0.0
	for i := range inputs {
		a.forward(inputs[i], h, o)
		for k := 0; k < o.Len(); k++ {
			d := o.AtVec(k) - targets[i].AtVec(k)
			sum += d * d
		}
	}
	return sum / float64(len(inputs)*o.Len())
}

func (a *ANNBP) Predict(x []float64) (int, error) {
	if err := checkInput("ann", a.trained, a.Dimension, x); err != nil {
		return 0, err
	}
	h := mat.NewVecDense(a.Hidden, nil)
	o := mat.NewVecDense(len(a.labels), nil)
	a.forward(a.scale(x), h, o)
	return a.labels[floats.MaxIdx(mat.Col(nil, 0, o))], nil
}

// Errors returns the training mean squared error after each epoch.
func (a *ANNBP) Errors() []float64 {
	return a.errs
}

func (a *ANNBP) Converged() bool {
	return a.converged
}
