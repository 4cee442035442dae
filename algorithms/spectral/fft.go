package spectral

import (
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT provides one-shot transforms of arbitrary length through mjibson/go-dsp
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the full complex FFT of a real signal
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ComputeOneSided returns bins 0..len(x)/2 of the FFT of a real signal
func (f *FFT) ComputeOneSided(x []float64) []complex128 {
	full := f.Compute(x)
	if len(full) == 0 {
		return full
	}
	return full[:len(x)/2+1]
}

// RealFFT is a reusable fixed-length real transform backed by gonum's fourier
// package. It is meant for repeated transforms of equal-length segments.
type RealFFT struct {
	plan   *fourier.FFT
	coeffs []complex128
}

// NewRealFFT creates a transform plan for segments of length size
func NewRealFFT(size int) *RealFFT {
	return &RealFFT{
		plan:   fourier.NewFFT(size),
		coeffs: make([]complex128, size/2+1),
	}
}

// Coefficients returns the size/2+1 one-sided coefficients of seq.
// The returned slice is reused by the next call.
func (r *RealFFT) Coefficients(seq []float64) []complex128 {
	r.coeffs = r.plan.Coefficients(r.coeffs, seq)
	return r.coeffs
}

// PowerInto accumulates |c|^2 of each coefficient into acc
func PowerInto(acc []float64, coeffs []complex128) {
	for i, c := range coeffs {
		acc[i] += real(c)*real(c) + imag(c)*imag(c)
	}
}
