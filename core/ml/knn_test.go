package ml

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKNN_KOutOfRange(t *testing.T) {
	ts := dataSetOf(t, 1, [][]float64{{0}, {1}, {2}}, []int{1, 2, 1})

	for _, k := range []int{0, -1, 4} {
		err := NewKNN(ts, k).Train()
		assert.True(t, errors.Is(err, ErrConfiguration), "K=%d", k)
	}
	assert.NoError(t, NewKNN(ts, 3).Train())
}

func TestKNN_EmptyTrainSet(t *testing.T) {
	err := NewKNN(NewDataSet(2), 1).Train()
	assert.True(t, errors.Is(err, ErrEmptyDataSet))
}

func TestKNN_PredictContract(t *testing.T) {
	knn := NewKNN(dataSetOf(t, 2, [][]float64{{0, 0}}, []int{4}), 1)

	_, err := knn.Predict([]float64{0, 0})
	assert.True(t, errors.Is(err, ErrNotTrained))

	require.NoError(t, knn.Train())
	_, err = knn.Predict([]float64{0, 0, 0})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestKNN_SingleExampleAlwaysWins(t *testing.T) {
	knn := NewKNN(dataSetOf(t, 2, [][]float64{{3, -2}}, []int{9}), 1)
	require.NoError(t, knn.Train())

	for _, x := range [][]float64{{3, -2}, {0, 0}, {-100, 100}, {1e9, 1e9}} {
		id, err := knn.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, 9, id)
	}
}

func TestKNN_KEqualsCountIsGlobalMajority(t *testing.T) {
	ts := dataSetOf(t, 1, [][]float64{{0}, {1}, {2}, {50}, {51}}, []int{1, 1, 1, 2, 2})
	knn := NewKNN(ts, ts.Count())
	require.NoError(t, knn.Train())

	for _, x := range []float64{50.5, 0, -20, 1000} {
		id, err := knn.Predict([]float64{x})
		require.NoError(t, err)
		assert.Equal(t, 1, id, "x=%v", x)
	}
}

func TestKNN_EqualDistanceKeepsEarlierExample(t *testing.T) {
	ts := dataSetOf(t, 2, [][]float64{{-1, 0}, {1, 0}}, []int{2, 1})
	knn := NewKNN(ts, 1)
	require.NoError(t, knn.Train())

	id, err := knn.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestKNN_VoteTieGoesToNearestLabel(t *testing.T) {
	ts := dataSetOf(t, 2, [][]float64{{0, 0}, {1, 0}}, []int{2, 1})
	knn := NewKNN(ts, 2)
	require.NoError(t, knn.Train())

	id, err := knn.Predict([]float64{0.1, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	id, err = knn.Predict([]float64{0.9, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestKNN_TwoGaussians(t *testing.T) {
	p := twoGaussians(t, 11)
	knn := NewKNN(p.TrainingSet, 7)
	require.NoError(t, knn.Train())
	assert.Greater(t, accuracy(t, knn, p.ValidationSet), 0.9)
}
