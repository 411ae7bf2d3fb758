package ml

import (
	"math"

	"npr/common"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultSVMC             = 1.0
	DefaultSVMTolerance     = 1e-3
	DefaultSVMEpsilon       = 1e-12
	DefaultSVMMaxIterations = 5000

	// kernel matrices above this many examples are evaluated on demand
	kernelCacheLimit = 4000
	// second derivative along the constraint line below which a pair is skipped
	minEta = 1e-12
	// multipliers this close to 0 or C, relative to C, are put on the bound
	boundSnap = 1e-12
	// steps on the most violating pair per pass, per training example
	innerStepsPerExample = 100
)

type supportVector struct {
	x    []float64
	coef float64 // alpha*y
}

// BinarySVM is a two-class kernel SVM trained by Sequential Minimal Optimization
// with the two-threshold (bUp, bLow) optimality check of Keerthi et al.
// The lower label id of the training set is the negative class.
type BinarySVM struct {
	TrainSet *DataSet
	Kernel   Kernel
	// C bounds every multiplier: 0 <= alpha[i] <= C.
	C float64
	// Tolerance is the slack allowed on the KKT conditions.
	Tolerance float64
	// Epsilon is the smallest relative multiplier change treated as progress.
	Epsilon float64
	// MaxIterations caps the number of passes over the working set.
	MaxIterations int
	Log           common.Logger

	neg, pos int
	y        []float64
	alpha    []float64
	// f[i] = sum_j alpha[j]*y[j]*K(i,j) - y[i], kept for every example
	f      []float64
	kcache *mat.SymDense

	bUp, bLow  float64
	iUp, iLow  int
	b          float64
	sv         []supportVector
	iterations int
	converged  bool
	trained    bool
}

func NewBinarySVM(trainSet *DataSet, kernel Kernel) *BinarySVM {
	return &BinarySVM{
		TrainSet:      trainSet,
		Kernel:        kernel,
		C:             DefaultSVMC,
		Tolerance:     DefaultSVMTolerance,
		Epsilon:       DefaultSVMEpsilon,
		MaxIterations: DefaultSVMMaxIterations,
	}
}

func (s *BinarySVM) validate() error {
	if err := checkTrainSet("svm", s.TrainSet); err != nil {
		return err
	}
	if s.Kernel == nil {
		return errors.Wrap(ErrConfiguration, "svm: kernel not set")
	}
	if s.C <= 0 || math.IsInf(s.C, 0) || math.IsNaN(s.C) {
		return errors.Wrapf(ErrConfiguration, "svm: C must be positive and finite, got %v", s.C)
	}
	if s.Tolerance <= 0 || s.Epsilon <= 0 {
		return errors.Wrapf(ErrConfiguration, "svm: tolerance %v and epsilon %v must be positive", s.Tolerance, s.Epsilon)
	}
	if s.MaxIterations < 1 {
		return errors.Wrapf(ErrConfiguration, "svm: MaxIterations must be >= 1, got %d", s.MaxIterations)
	}
	return nil
}

func (s *BinarySVM) Train() error {
	if err := s.validate(); err != nil {
		return err
	}
	neg, pos, err := binaryLabels("svm", s.TrainSet)
	if err != nil {
		return err
	}
	log := observer(s.Log)
	s.neg, s.pos = neg, pos

	n := s.TrainSet.Count()
	s.y = make([]float64, n)
	s.alpha = make([]float64, n)
	s.f = make([]float64, n)
	for i, e := range s.TrainSet.Examples() {
		if e.Label.ID == pos {
			s.y[i] = 1
		} else {
			s.y[i] = -1
		}
		s.f[i] = -s.y[i]
	}
	s.buildKernelCache()
	s.updateThresholds()

	numChanged, examineAll := 0, true
	s.iterations = 0
	for (numChanged > 0 || examineAll) && s.iterations < s.MaxIterations {
		numChanged = 0
		if examineAll {
			for i := 0; i < n; i++ {
				numChanged += s.examineExample(i)
			}
		} else {
			// optimise the most violating pair until it meets the tolerance,
			// then check every example again
			for steps := 0; !s.optimal() && steps < innerStepsPerExample*n; steps++ {
				if !s.takeStep(s.iUp, s.iLow) {
					break
				}
			}
		}
		if examineAll {
			examineAll = false
		} else if numChanged == 0 {
			examineAll = true
		}
		s.iterations++
	}
	capped := numChanged > 0 || examineAll
	s.converged = !capped && s.optimal()
	switch {
	case capped:
		log.Infof("svm: stopped after %d passes without meeting KKT tolerance %g", s.iterations, s.Tolerance)
	case !s.converged:
		log.Infof("svm: no pair can make progress, KKT gap %g above %g", s.bLow-s.bUp, 2*s.Tolerance)
	}

	s.b = 0
	if s.iUp >= 0 && s.iLow >= 0 {
		s.b = -(s.bUp + s.bLow) / 2
	}
	s.collectSupportVectors()
	s.kcache = nil
	s.f = nil
	s.trained = true
	log.Infof("svm trained: %d passes, %d support vectors of %d examples, b=%.6f",
		s.iterations, len(s.sv), n, s.b)
	return nil
}

func (s *BinarySVM) buildKernelCache() {
	s.kcache = nil
	n := s.TrainSet.Count()
	if n > kernelCacheLimit {
		return
	}
	s.kcache = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		xi := s.TrainSet.At(i).X
		for j := i; j < n; j++ {
			s.kcache.SetSym(i, j, s.Kernel.Compute(xi, s.TrainSet.At(j).X))
		}
	}
}

func (s *BinarySVM) k(i, j int) float64 {
	if s.kcache != nil {
		return s.kcache.At(i, j)
	}
	return s.Kernel.Compute(s.TrainSet.At(i).X, s.TrainSet.At(j).X)
}

// inUp: alpha[i] can move so that y[i]*alpha[i] grows.
func (s *BinarySVM) inUp(i int) bool {
	return (s.y[i] > 0 && s.alpha[i] < s.C) || (s.y[i] < 0 && s.alpha[i] > 0)
}

// inLow: alpha[i] can move so that y[i]*alpha[i] shrinks.
func (s *BinarySVM) inLow(i int) bool {
	return (s.y[i] > 0 && s.alpha[i] > 0) || (s.y[i] < 0 && s.alpha[i] < s.C)
}

func (s *BinarySVM) track(i int) {
	if s.inUp(i) && s.f[i] < s.bUp {
		s.bUp, s.iUp = s.f[i], i
	}
	if s.inLow(i) && s.f[i] > s.bLow {
		s.bLow, s.iLow = s.f[i], i
	}
}

func (s *BinarySVM) updateThresholds() {
	s.bUp, s.iUp = math.Inf(1), -1
	s.bLow, s.iLow = math.Inf(-1), -1
	for i := range s.f {
		s.track(i)
	}
}

// optimal reports whether every example meets the KKT conditions within Tolerance.
func (s *BinarySVM) optimal() bool {
	return s.bLow <= s.bUp+2*s.Tolerance
}

// examineExample returns 1 when it made progress on a pair containing i2.
func (s *BinarySVM) examineExample(i2 int) int {
	f2 := s.f[i2]
	lowGap, upGap := s.bLow-f2, f2-s.bUp
	violatesUp := s.inUp(i2) && lowGap > 2*s.Tolerance
	violatesLow := s.inLow(i2) && upGap > 2*s.Tolerance

	var i1 int
	switch {
	case violatesUp && violatesLow:
		i1 = s.iUp
		if lowGap > upGap {
			i1 = s.iLow
		}
	case violatesUp:
		i1 = s.iLow
	case violatesLow:
		i1 = s.iUp
	default:
		return 0
	}
	if s.takeStep(i1, i2) {
		return 1
	}
	return 0
}

func (s *BinarySVM) snap(a float64) float64 {
	switch {
	case a < boundSnap*s.C:
		return 0
	case a > s.C-boundSnap*s.C:
		return s.C
	}
	return a
}

// takeStep solves the two-multiplier subproblem analytically.
func (s *BinarySVM) takeStep(i1, i2 int) bool {
	if i1 == i2 || i1 < 0 || i2 < 0 {
		return false
	}
	a1, a2 := s.alpha[i1], s.alpha[i2]
	y1, y2 := s.y[i1], s.y[i2]
	sgn := y1 * y2

	var lo, hi float64
	if y1 != y2 {
		lo = math.Max(0, a2-a1)
		hi = math.Min(s.C, s.C+a2-a1)
	} else {
		lo = math.Max(0, a1+a2-s.C)
		hi = math.Min(s.C, a1+a2)
	}
	if lo >= hi {
		return false
	}

	k11, k12, k22 := s.k(i1, i1), s.k(i1, i2), s.k(i2, i2)
	eta := k11 + k22 - 2*k12
	if eta <= minEta {
		observer(s.Log).Debugf("svm: skip degenerate pair (%d, %d), eta=%g", i1, i2, eta)
		return false
	}

	a2new := a2 + y2*(s.f[i1]-s.f[i2])/eta
	if a2new < lo {
		a2new = lo
	} else if a2new > hi {
		a2new = hi
	}
	a2new = s.snap(a2new)
	if math.Abs(a2new-a2) < s.Epsilon*(a2new+a2+s.Epsilon) {
		return false
	}
	a1new := s.snap(a1 + sgn*(a2-a2new))
	if math.IsNaN(a1new) || math.IsNaN(a2new) {
		return false
	}

	d1, d2 := y1*(a1new-a1), y2*(a2new-a2)
	s.alpha[i1], s.alpha[i2] = a1new, a2new
	s.bUp, s.iUp = math.Inf(1), -1
	s.bLow, s.iLow = math.Inf(-1), -1
	for i := range s.f {
		s.f[i] += d1*s.k(i1, i) + d2*s.k(i2, i)
		s.track(i)
	}
	return true
}

func (s *BinarySVM) collectSupportVectors() {
	s.sv = s.sv[:0]
	for i, a := range s.alpha {
		if a > 0 {
			s.sv = append(s.sv, supportVector{x: s.TrainSet.At(i).X, coef: a * s.y[i]})
		}
	}
}

// Decision returns sum(alpha_i*y_i*K(x, x_i)) + b over the support vectors.
func (s *BinarySVM) Decision(x []float64) (float64, error) {
	var dim int
	if s.TrainSet != nil {
		dim = s.TrainSet.Dimension()
	}
	if err := checkInput("svm", s.trained, dim, x); err != nil {
		return 0, err
	}
	f := s.b
	for _, v := range s.sv {
		f += v.coef * s.Kernel.Compute(x, v.x)
	}
	return f, nil
}

func (s *BinarySVM) Predict(x []float64) (int, error) {
	f, err := s.Decision(x)
	if err != nil {
		return 0, err
	}
	if f >= 0 {
		return s.pos, nil
	}
	return s.neg, nil
}

func (s *BinarySVM) SupportVectorCount() int {
	return len(s.sv)
}

func (s *BinarySVM) Converged() bool {
	return s.converged
}

func (s *BinarySVM) Iterations() int {
	return s.iterations
}
