package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kernel is a symmetric similarity function standing in for an inner product.
type Kernel interface {
	Compute(a, b []float64) float64
}

type LinearKernel struct{}

func (LinearKernel) Compute(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// GaussianRBFKernel computes exp(-Gamma*|a-b|^2).
type GaussianRBFKernel struct {
	Gamma float64
}

func NewGaussianRBFKernel(gamma float64) GaussianRBFKernel {
	return GaussianRBFKernel{Gamma: gamma}
}

func (k GaussianRBFKernel) Compute(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Exp(-k.Gamma * d * d)
}

// PolynomialKernel computes (Gamma*<a,b> + Coef0)^Degree.
type PolynomialKernel struct {
	Gamma  float64
	Coef0  float64
	Degree int
}

func (k PolynomialKernel) Compute(a, b []float64) float64 {
	return powi(k.Gamma*floats.Dot(a, b)+k.Coef0, k.Degree)
}

// SigmoidKernel computes tanh(Gamma*<a,b> + Coef0).
type SigmoidKernel struct {
	Gamma float64
	Coef0 float64
}

func (k SigmoidKernel) Compute(a, b []float64) float64 {
	return math.Tanh(k.Gamma*floats.Dot(a, b) + k.Coef0)
}

func powi(base float64, times int) float64 {
	tmp, ret := base, 1.0
	for t := times; t > 0; t /= 2 {
		if t%2 == 1 {
			ret *= tmp
		}
		tmp *= tmp
	}
	return ret
}
