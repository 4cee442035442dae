package spectral

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/RyanBlaney/sonido-overtones/algorithms/common"
	"github.com/RyanBlaney/sonido-overtones/logging"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

func sine(n, sampleRate int, freq, amp, offset float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = offset + amp*math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return x
}

func checkInvariants(t *testing.T, spec *Spectrum, sampleRate int) {
	t.Helper()

	if err := spec.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if spec.Frequencies[0] != 0 {
		t.Errorf("first frequency = %g, want 0", spec.Frequencies[0])
	}
	if last := spec.Frequencies[spec.Len()-1]; last > float64(sampleRate)/2 {
		t.Errorf("last frequency %g exceeds Nyquist %g", last, float64(sampleRate)/2)
	}
	if !common.AllFinite(spec.Power) {
		t.Error("power contains NaN/Inf")
	}
}

func TestEstimatorsLocateSinePeak(t *testing.T) {
	const sampleRate = 44100
	x := sine(2*sampleRate, sampleRate, 1000, 0.5, 0)

	for _, est := range []Estimator{NewWelch(), NewPeriodogram()} {
		t.Run(est.Name(), func(t *testing.T) {
			spec, err := est.Estimate(x, sampleRate)
			if err != nil {
				t.Fatalf("Estimate: %v", err)
			}
			checkInvariants(t, spec, sampleRate)

			peak := spec.Frequencies[spec.PeakBin()]
			if math.Abs(peak-1000) > spec.Resolution() {
				t.Errorf("peak at %g Hz, want 1000 ± %g", peak, spec.Resolution())
			}
			if spec.Method != est.Name() {
				t.Errorf("method = %q", spec.Method)
			}
		})
	}
}

func TestWelchSpectrumScaling(t *testing.T) {
	// 1024 Hz falls exactly on bin 1024 of an 8192-point segment at 8192 Hz
	const sampleRate = 8192
	x := sine(4*sampleRate, sampleRate, 1024, 1, 0)

	spec, err := NewWelch().Estimate(x, sampleRate)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if spec.Len() != 4097 {
		t.Fatalf("bins = %d, want 4097", spec.Len())
	}

	// spectrum scaling puts A^2/2 in the tone's bin
	if got := spec.Power[1024]; math.Abs(got-0.5) > 1e-6 {
		t.Errorf("peak power = %g, want 0.5", got)
	}
}

func TestWelchSegmentLength(t *testing.T) {
	w := NewWelch()
	cases := map[int]int{1: 256, 100: 256, 256: 256, 5000: 5000, 8192: 8192, 100000: 8192}
	for n, want := range cases {
		if got := w.SegmentLength(n); got != want {
			t.Errorf("SegmentLength(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestWelchShortSignal(t *testing.T) {
	const sampleRate = 8000
	x := sine(100, sampleRate, 500, 1, 0)

	spec, err := NewWelch().Estimate(x, sampleRate)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	checkInvariants(t, spec, sampleRate)

	if spec.Len() != 129 {
		t.Errorf("bins = %d, want 129 (256-sample segment)", spec.Len())
	}
	if got := spec.Resolution(); math.Abs(got-sampleRate/256.0) > 1e-12 {
		t.Errorf("resolution = %g", got)
	}
}

func TestPeriodogramPadsToPowerOfTwo(t *testing.T) {
	const sampleRate = 16000
	spec, err := NewPeriodogram().Estimate(sine(1000, sampleRate, 440, 1, 0), sampleRate)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	checkInvariants(t, spec, sampleRate)

	if spec.Len() != 513 {
		t.Errorf("bins = %d, want 513", spec.Len())
	}
	if got := spec.Frequencies[512]; got != sampleRate/2 {
		t.Errorf("last bin = %g, want Nyquist", got)
	}
}

func TestDCOffsetIsRemoved(t *testing.T) {
	const sampleRate = 8000
	x := sine(16000, sampleRate, 1000, 0.1, 0.7)

	for _, est := range []Estimator{NewWelch(), NewPeriodogram()} {
		spec, err := est.Estimate(x, sampleRate)
		if err != nil {
			t.Fatalf("%s: %v", est.Name(), err)
		}
		if peak := spec.Frequencies[spec.PeakBin()]; peak < 900 {
			t.Errorf("%s: peak at %g Hz, DC offset leaked into the low bins", est.Name(), peak)
		}
	}
}

func TestConstantSignalHasNoPower(t *testing.T) {
	x := make([]float64, 4096)
	for i := range x {
		x[i] = 0.25
	}

	for _, est := range []Estimator{NewWelch(), NewPeriodogram()} {
		spec, err := est.Estimate(x, 44100)
		if err != nil {
			t.Fatalf("%s: %v", est.Name(), err)
		}
		for i, p := range spec.Power {
			if p > 1e-20 {
				t.Fatalf("%s: power[%d] = %g, want 0", est.Name(), i, p)
			}
		}
	}
}

func TestTinySignals(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		x := sine(n, 8000, 100, 1, 0.1)
		for _, est := range []Estimator{NewWelch(), NewPeriodogram()} {
			spec, err := est.Estimate(x, 8000)
			if err != nil {
				t.Fatalf("%s n=%d: %v", est.Name(), n, err)
			}
			checkInvariants(t, spec, 8000)
		}
	}
}

func TestEstimateDoesNotModifyInput(t *testing.T) {
	x := sine(1024, 8000, 300, 1, 0.5)
	orig := append([]float64(nil), x...)

	for _, est := range []Estimator{NewWelch(), NewPeriodogram()} {
		if _, err := est.Estimate(x, 8000); err != nil {
			t.Fatal(err)
		}
	}
	for i := range x {
		if x[i] != orig[i] {
			t.Fatalf("input modified at %d", i)
		}
	}
}

func TestEstimateErrors(t *testing.T) {
	for _, est := range []Estimator{NewWelch(), NewPeriodogram()} {
		if _, err := est.Estimate(nil, 8000); !errors.Is(err, common.ErrEmptySignal) {
			t.Errorf("%s: empty input err = %v", est.Name(), err)
		}
		if _, err := est.Estimate([]float64{1, 2}, 0); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("%s: zero rate err = %v", est.Name(), err)
		}
	}
}

type failingEstimator struct{}

func (failingEstimator) Name() string { return "failing" }

func (failingEstimator) Estimate([]float64, int) (*Spectrum, error) {
	return nil, errors.New("capability missing")
}

func TestFallbackEstimator(t *testing.T) {
	est := &FallbackEstimator{Primary: failingEstimator{}, Fallback: NewPeriodogram()}

	spec, err := est.Estimate(sine(512, 8000, 200, 1, 0), 8000)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if spec.Method != MethodPeriodogram {
		t.Errorf("method = %q, want periodogram", spec.Method)
	}

	noFallback := &FallbackEstimator{Primary: failingEstimator{}}
	if _, err := noFallback.Estimate([]float64{1}, 8000); err == nil {
		t.Error("expected primary error without a fallback")
	}
}

func TestNewEstimator(t *testing.T) {
	est, err := NewEstimator(MethodPeriodogram)
	if err != nil || est.Name() != MethodPeriodogram {
		t.Errorf("periodogram: %v, %v", est, err)
	}
	est, err = NewEstimator("")
	if err != nil || est.Name() != MethodWelch {
		t.Errorf("default: %v, %v", est, err)
	}
	if _, err := NewEstimator("multitaper"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestDefaultEstimatorInjection(t *testing.T) {
	defer SetDefaultEstimator(nil)

	if got := DefaultEstimator().Name(); got != MethodWelch {
		t.Errorf("default = %q, want welch", got)
	}

	SetDefaultEstimator(NewPeriodogram())
	spec, err := EstimatePSD(sine(2048, 8000, 100, 1, 0), 8000)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Method != MethodPeriodogram {
		t.Errorf("EstimatePSD used %q", spec.Method)
	}
}

func TestSpectrumValidate(t *testing.T) {
	bad := []*Spectrum{
		nil,
		{Frequencies: []float64{0, 1}, Power: []float64{1}},
		{Frequencies: []float64{0, 2, 1}, Power: []float64{1, 1, 1}},
		{Frequencies: []float64{0, 1}, Power: []float64{1, -1}},
	}
	for i, s := range bad {
		if err := s.Validate(); !errors.Is(err, ErrInvalidSpectrum) {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
}

func TestDescribe(t *testing.T) {
	spec := &Spectrum{
		Frequencies: []float64{0, 10, 100, 200, 300, 400},
		Power:       []float64{50, 50, 1, 0, 1, 2},
	}

	d := Describe(spec, 20)
	if d.CentroidHz != 300 {
		t.Errorf("centroid = %g, want 300", d.CentroidHz)
	}
	if d.RolloffHz != 400 {
		t.Errorf("rolloff = %g, want 400", d.RolloffHz)
	}
	if d.Flatness <= 0 || d.Flatness >= 1 {
		t.Errorf("flatness = %g, want in (0, 1)", d.Flatness)
	}

	flat := &Spectrum{Frequencies: []float64{0, 1, 2, 3}, Power: []float64{2, 2, 2, 2}}
	if got := Describe(flat, 0).Flatness; math.Abs(got-1) > 1e-12 {
		t.Errorf("white flatness = %g, want 1", got)
	}

	silent := &Spectrum{Frequencies: []float64{0, 100}, Power: []float64{0, 0}}
	if d := Describe(silent, 20); d != (Descriptors{}) {
		t.Errorf("silence descriptors = %+v", d)
	}
	if d := Describe(silent, 1000); d != (Descriptors{}) {
		t.Errorf("empty range descriptors = %+v", d)
	}
}

func TestSineIsTonal(t *testing.T) {
	spec, err := NewWelch().Estimate(sine(32768, 16000, 1000, 1, 0), 16000)
	if err != nil {
		t.Fatal(err)
	}

	d := Describe(spec, 20)
	if math.Abs(d.CentroidHz-1000) > 50 {
		t.Errorf("centroid = %g, want near 1000", d.CentroidHz)
	}
	if d.Flatness > 0.1 {
		t.Errorf("flatness = %g, want tonal", d.Flatness)
	}
}
