package dataset

import (
	"math"
	"math/rand"
	"strings"

	"npr/common"
	"npr/core/ml"

	"github.com/pkg/errors"
)

type ProblemType int

const (
	ChessBoard ProblemType = iota
	TwoGaussians
	XOR
)

var (
	ProblemType_Name = map[ProblemType]string{
		ChessBoard:   "chessboard",
		TwoGaussians: "gaussians",
		XOR:          "xor",
	}
	ProblemType_Value = map[string]ProblemType{
		"chessboard": ChessBoard,
		"gaussians":  TwoGaussians,
		"xor":        XOR,
	}
)

func (t ProblemType) String() string {
	if name, ok := ProblemType_Name[t]; ok {
		return name
	}
	return "unknown"
}

func ParseProblemType(name string) (ProblemType, error) {
	t, ok := ProblemType_Value[strings.ToLower(name)]
	if !ok {
		return 0, errors.Errorf("unknown problem type %q", name)
	}
	return t, nil
}

const (
	LabelA = 1
	LabelB = 2

	chessCells    = 4
	chessCellSize = 25.0

	gaussianSigma = 1.5

	xorOffset = 30.0
	xorSigma  = 6.0
)

// Options sizes a generated problem. Zero counts take the per-type defaults.
type Options struct {
	TrainCount      int
	ValidationCount int
	Seed            int64
}

func DefaultOptions(t ProblemType) Options {
	switch t {
	case ChessBoard:
		return Options{TrainCount: 1000, ValidationCount: 200, Seed: 1}
	case XOR:
		return Options{TrainCount: 200, ValidationCount: 100, Seed: 1}
	default:
		return Options{TrainCount: 200, ValidationCount: 50, Seed: 1}
	}
}

func (o Options) withDefaults(t ProblemType) Options {
	d := DefaultOptions(t)
	if o.TrainCount == 0 {
		o.TrainCount = d.TrainCount
	}
	if o.ValidationCount == 0 {
		o.ValidationCount = d.ValidationCount
	}
	return o
}

type pointFunc func(rng *rand.Rand, i int) ([]float64, int)

// ProblemFactory generates labelled 2-D problems. The same Options always give the same Problem.
type ProblemFactory struct {
	Log common.Logger
}

func NewProblemFactory(log common.Logger) *ProblemFactory {
	return &ProblemFactory{Log: log}
}

func (f *ProblemFactory) CreateClassificationProblem(t ProblemType, opts Options) (*ml.Problem, error) {
	opts = opts.withDefaults(t)
	if opts.TrainCount < 0 || opts.ValidationCount < 0 {
		return nil, errors.Errorf("negative example count: train %d, validation %d", opts.TrainCount, opts.ValidationCount)
	}

	var gen pointFunc
	switch t {
	case ChessBoard:
		gen = chessBoardPoint
	case TwoGaussians:
		gen = twoGaussiansPoint
	case XOR:
		gen = xorPoint
	default:
		return nil, errors.Errorf("unsupported problem type %d", t)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	train, err := fill(rng, gen, opts.TrainCount)
	if err != nil {
		return nil, errors.Wrap(err, "generate training set")
	}
	validation, err := fill(rng, gen, opts.ValidationCount)
	if err != nil {
		return nil, errors.Wrap(err, "generate validation set")
	}
	p, err := ml.NewProblem(train, validation)
	if err != nil {
		return nil, err
	}
	if f.Log != nil {
		f.Log.Infof("created %s problem: %d training, %d validation examples (seed %d)",
			t, train.Count(), validation.Count(), opts.Seed)
	}
	return p, nil
}

func fill(rng *rand.Rand, gen pointFunc, count int) (*ml.DataSet, error) {
	ds := ml.NewDataSet(2)
	for i := 0; i < count; i++ {
		x, label := gen(rng, i)
		if err := ds.Add(x, label); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// chessBoardPoint samples the board uniformly; squares alternate between the two labels.
func chessBoardPoint(rng *rand.Rand, _ int) ([]float64, int) {
	size := chessCells * chessCellSize
	x, y := rng.Float64()*size, rng.Float64()*size
	cx, cy := int(math.Floor(x/chessCellSize)), int(math.Floor(y/chessCellSize))
	if (cx+cy)%2 == 0 {
		return []float64{x, y}, LabelA
	}
	return []float64{x, y}, LabelB
}

// twoGaussiansPoint alternates between a cluster at (0,0) and one at (10,10).
func twoGaussiansPoint(rng *rand.Rand, i int) ([]float64, int) {
	if i%2 == 0 {
		return []float64{rng.NormFloat64() * gaussianSigma, rng.NormFloat64() * gaussianSigma}, LabelA
	}
	return []float64{10 + rng.NormFloat64()*gaussianSigma, 10 + rng.NormFloat64()*gaussianSigma}, LabelB
}

// xorPoint cycles through four blobs; diagonal quadrants share a label.
func xorPoint(rng *rand.Rand, i int) ([]float64, int) {
	signs := [4][2]float64{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
	s := signs[i%4]
	x := []float64{
		s[0]*xorOffset + rng.NormFloat64()*xorSigma,
		s[1]*xorOffset + rng.NormFloat64()*xorSigma,
	}
	if s[0] == s[1] {
		return x, LabelA
	}
	return x, LabelB
}
