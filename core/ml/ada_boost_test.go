package ml

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaBoost_Textbook(t *testing.T) {
	xs := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}, {9}}
	labels := []int{1, 1, 1, -1, -1, -1, 1, 1, 1, -1}
	ts := dataSetOf(t, 1, xs, labels)

	ab := NewAdaBoost(ts, 3, 1)
	require.NoError(t, ab.Train())

	history := ab.History()
	require.Len(t, history, 3)
	want := []struct {
		threshold, polarity, err, alpha float64
	}{
		{2.5, -1, 0.3, 0.4236},
		{8.5, -1, 0.2143, 0.6496},
		{5.5, 1, 0.1818, 0.7520},
	}
	for i, w := range want {
		r := history[i]
		assert.Equal(t, 0, r.Stump.Feature)
		assert.Equal(t, w.threshold, r.Stump.Threshold, "round %d", i+1)
		assert.Equal(t, w.polarity, r.Stump.Polarity, "round %d", i+1)
		assert.InDelta(t, w.err, r.Err, 1e-3, "round %d", i+1)
		assert.InDelta(t, w.alpha, r.Alpha, 1e-3, "round %d", i+1)
		assert.InDelta(t, 1.0, r.WeightSum, 1e-9)
	}

	for i, x := range xs {
		id, err := ab.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, labels[i], id, "x=%v", x)
	}
}

func TestAdaBoost_OverlappingClusters(t *testing.T) {
	p := blobProblem(t, 31, 200, 50, 1.5, []blob{{0, 0, 1}, {2, 2, 2}})
	ab := NewAdaBoost(p.TrainingSet, 20, p.Dimension)
	require.NoError(t, ab.Train())

	history := ab.History()
	require.NotEmpty(t, history)
	for i, r := range history {
		assert.InDelta(t, 1.0, r.WeightSum, 1e-9, "round %d", i+1)
		assert.Less(t, r.Err, 0.5)
		assert.Greater(t, r.Alpha, 0.0)
		assert.False(t, math.IsInf(r.Alpha, 0))
	}
}

func TestAdaBoost_PerfectStumpStops(t *testing.T) {
	xs := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}, {9}, {10}}
	labels := []int{1, 1, 1, 1, 1, 2, 2, 2, 2, 2}
	ab := NewAdaBoost(dataSetOf(t, 1, xs, labels), 50, 1)
	require.NoError(t, ab.Train())

	history := ab.History()
	require.Len(t, history, 1)
	assert.Equal(t, 5.5, history[0].Stump.Threshold)
	assert.Equal(t, 1.0, history[0].Stump.Polarity)
	assert.Equal(t, minRoundError, history[0].Err)
	assert.False(t, math.IsInf(history[0].Alpha, 0))

	for i, x := range xs {
		id, err := ab.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, labels[i], id)
	}
}

func TestAdaBoost_NoWeakLearnerFallsBackToMajority(t *testing.T) {
	xs := [][]float64{{0, 0}, {1, 1}, {0, 1}, {1, 0}}
	ab := NewAdaBoost(dataSetOf(t, 2, xs, []int{1, 1, 2, 2}), 10, 2)
	require.NoError(t, ab.Train())

	assert.Empty(t, ab.History())
	for _, x := range xs {
		id, err := ab.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, 1, id)
	}
}

func TestAdaBoost_TwoGaussians(t *testing.T) {
	p := twoGaussians(t, 32)
	ab := NewAdaBoost(p.TrainingSet, 50, p.Dimension)
	require.NoError(t, ab.Train())
	assert.Greater(t, accuracy(t, ab, p.ValidationSet), 0.9)
}

func TestAdaBoost_ConfigurationErrors(t *testing.T) {
	ts := dataSetOf(t, 1, [][]float64{{0}, {1}}, []int{1, 2})

	assert.True(t, errors.Is(NewAdaBoost(ts, 0, 1).Train(), ErrConfiguration))
	assert.True(t, errors.Is(NewAdaBoost(ts, 5, 2).Train(), ErrConfiguration))

	three := dataSetOf(t, 1, [][]float64{{0}, {1}, {2}}, []int{1, 2, 3})
	assert.True(t, errors.Is(NewAdaBoost(three, 5, 1).Train(), ErrConfiguration))

	_, err := NewAdaBoost(ts, 5, 1).Predict([]float64{0})
	assert.True(t, errors.Is(err, ErrNotTrained))
}
