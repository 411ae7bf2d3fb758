package ml

import (
	"npr/common"

	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is returned by Train when hyperparameters are invalid. Training never starts.
	ErrConfiguration = errors.New("invalid classifier configuration")
	ErrEmptyDataSet  = errors.New("training set is empty")

	ErrNotTrained        = errors.New("classifier is not trained")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
)

// Classifier is the contract shared by every algorithm in this package.
// Train is called once; Predict may be called any number of times afterwards
// and never changes the trained model.
type Classifier interface {
	Train() error
	Predict(x []float64) (int, error)
}

func observer(l common.Logger) common.Logger {
	if l == nil {
		return common.NopLogger()
	}
	return l
}

func checkTrainSet(name string, ts *DataSet) error {
	if ts == nil || ts.Count() == 0 {
		return errors.Wrapf(ErrEmptyDataSet, "%s", name)
	}
	return nil
}

// binaryLabels returns the two label ids of a two-class training set, lower id first.
func binaryLabels(name string, ts *DataSet) (neg, pos int, err error) {
	labels := ts.Labels()
	if len(labels) != 2 {
		return 0, 0, errors.Wrapf(ErrConfiguration, "%s needs exactly 2 labels, got %d", name, len(labels))
	}
	return labels[0], labels[1], nil
}

func checkInput(name string, trained bool, dimension int, x []float64) error {
	if !trained {
		return errors.Wrapf(ErrNotTrained, "%s predict", name)
	}
	if len(x) != dimension {
		return errors.Wrapf(ErrDimensionMismatch, "%s predict: got %d features, want %d", name, len(x), dimension)
	}
	return nil
}
