package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type blob struct {
	x, y  float64
	label int
}

// blobSet draws count points cycling through the blobs in order.
func blobSet(t *testing.T, rng *rand.Rand, count int, sigma float64, blobs []blob) *DataSet {
	ds := NewDataSet(2)
	for i := 0; i < count; i++ {
		b := blobs[i%len(blobs)]
		x := []float64{b.x + rng.NormFloat64()*sigma, b.y + rng.NormFloat64()*sigma}
		require.NoError(t, ds.Add(x, b.label))
	}
	return ds
}

func blobProblem(t *testing.T, seed int64, train, validation int, sigma float64, blobs []blob) *Problem {
	rng := rand.New(rand.NewSource(seed))
	p, err := NewProblem(blobSet(t, rng, train, sigma, blobs), blobSet(t, rng, validation, sigma, blobs))
	require.NoError(t, err)
	return p
}

// twoGaussians: clusters at (0,0) and (10,10), labels 1 and 2, 200 training and 50 validation points.
func twoGaussians(t *testing.T, seed int64) *Problem {
	return blobProblem(t, seed, 200, 50, 1.5, []blob{{0, 0, 1}, {10, 10, 2}})
}

// xorProblem: diagonal blobs around (+-30,+-30) share a label.
func xorProblem(t *testing.T, seed int64) *Problem {
	return blobProblem(t, seed, 200, 100, 6, []blob{{30, 30, 1}, {30, -30, 2}, {-30, -30, 1}, {-30, 30, 2}})
}

func dataSetOf(t *testing.T, dimension int, xs [][]float64, labels []int) *DataSet {
	ds := NewDataSet(dimension)
	for i := range xs {
		require.NoError(t, ds.Add(xs[i], labels[i]))
	}
	return ds
}

func accuracy(t *testing.T, c Classifier, set *DataSet) float64 {
	s, err := Evaluate(c, set)
	require.NoError(t, err)
	return s.Accuracy
}

// chessBoardSet samples a 100x100 board of 25x25 squares; squares alternate labels 1 and 2.
func chessBoardSet(t *testing.T, rng *rand.Rand, count int) *DataSet {
	ds := NewDataSet(2)
	for i := 0; i < count; i++ {
		x := []float64{rng.Float64() * 100, rng.Float64() * 100}
		label := 1
		if (int(x[0]/25)+int(x[1]/25))%2 == 1 {
			label = 2
		}
		require.NoError(t, ds.Add(x, label))
	}
	return ds
}
