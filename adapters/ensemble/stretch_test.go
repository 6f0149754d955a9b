package ensemble

import (
	"context"
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

// gaussianLogProb is a standard multivariate normal in ndim dimensions,
// an analytically known target.
func gaussianLogProb(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return -0.5 * sum
}

func initialEnsemble(t *testing.T, nwalkers, ndim int, seed uint64) [][]float64 {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	walkers := make([][]float64, nwalkers)
	for w := range walkers {
		walkers[w] = make([]float64, ndim)
		for d := range walkers[w] {
			walkers[w][d] = 0.1 * rng.NormFloat64()
		}
	}
	return walkers
}

func TestSample_ChainShape(t *testing.T) {
	s := New(42)
	walkers := initialEnsemble(t, 20, 3, 1)
	ch, err := s.Sample(context.Background(), gaussianLogProb, walkers, 500)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if ch.Steps != 500 || ch.Walkers != 20 || ch.Dim != 3 {
		t.Fatalf("chain shape (%d,%d,%d), want (500,20,3)", ch.Steps, ch.Walkers, ch.Dim)
	}
	set, err := ch.Trim(100)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	if set.Steps != 400 || set.Walkers != 20 || set.Dim != 3 {
		t.Errorf("trimmed shape (%d,%d,%d), want (400,20,3)", set.Steps, set.Walkers, set.Dim)
	}
}

func TestSample_DeterministicForSeed(t *testing.T) {
	run := func(workers int) [][][]float64 {
		s := New(123, WithWorkers(workers))
		walkers := initialEnsemble(t, 10, 3, 7)
		ch, err := s.Sample(context.Background(), gaussianLogProb, walkers, 200)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		return ch.Positions
	}
	a := run(1)
	b := run(4) // worker count must not change the draw sequence
	for s := range a {
		for w := range a[s] {
			for d := range a[s][w] {
				if a[s][w][d] != b[s][w][d] {
					t.Fatalf("chains diverge at step %d walker %d dim %d: %v vs %v",
						s, w, d, a[s][w][d], b[s][w][d])
				}
			}
		}
	}
}

func TestSample_AcceptanceFractionsInRange(t *testing.T) {
	s := New(42)
	walkers := initialEnsemble(t, 16, 3, 3)
	ch, err := s.Sample(context.Background(), gaussianLogProb, walkers, 300)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	some := false
	for w, f := range ch.AcceptanceFractions() {
		if f < 0 || f > 1 {
			t.Errorf("walker %d acceptance %v outside [0,1]", w, f)
		}
		if f > 0 {
			some = true
		}
	}
	if !some {
		t.Error("no walker ever accepted a move on a smooth unimodal target")
	}
}

func TestSample_RecoversGaussianMoments(t *testing.T) {
	s := New(99)
	walkers := initialEnsemble(t, 32, 2, 5)
	ch, err := s.Sample(context.Background(), func(v []float64) float64 {
		// Unit normal centered at (3, -2).
		dx, dy := v[0]-3, v[1]+2
		return -0.5 * (dx*dx + dy*dy)
	}, walkers, 4000)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	set, err := ch.Trim(1000)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	meanOf := func(xs []float64) float64 {
		sum := 0.0
		for _, x := range xs {
			sum += x
		}
		return sum / float64(len(xs))
	}
	if got := meanOf(set.FlatParam(0)); math.Abs(got-3) > 0.2 {
		t.Errorf("posterior mean x = %v, want 3 +/- 0.2", got)
	}
	if got := meanOf(set.FlatParam(1)); math.Abs(got+2) > 0.2 {
		t.Errorf("posterior mean y = %v, want -2 +/- 0.2", got)
	}
}

func TestSample_NeverLeavesSupport(t *testing.T) {
	// Half-plane support: x > 0 has finite density, elsewhere -Inf. No
	// committed position may ever lie outside the support.
	s := New(7)
	walkers := make([][]float64, 8)
	for w := range walkers {
		walkers[w] = []float64{1 + 0.01*float64(w), 0}
	}
	ch, err := s.Sample(context.Background(), func(v []float64) float64 {
		if v[0] <= 0 {
			return math.Inf(-1)
		}
		return -0.5 * (v[0]*v[0] + v[1]*v[1])
	}, walkers, 500)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for step := range ch.Positions {
		for w := range ch.Positions[step] {
			if ch.Positions[step][w][0] <= 0 {
				t.Fatalf("step %d walker %d committed x = %v outside support",
					step, w, ch.Positions[step][w][0])
			}
		}
	}
}

func TestSample_CancellationKeepsPartialChain(t *testing.T) {
	// One worker keeps the evaluation counter race-free.
	s := New(42, WithWorkers(1))
	walkers := initialEnsemble(t, 8, 3, 11)

	ctx, cancel := context.WithCancel(context.Background())
	evals := 0
	logProb := func(v []float64) float64 {
		evals++
		if evals == 200 { // cancel mid-run, observed between steps
			cancel()
		}
		return gaussianLogProb(v)
	}
	ch, err := s.Sample(ctx, logProb, walkers, 10000)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sample error = %v, want context.Canceled", err)
	}
	if ch == nil {
		t.Fatal("cancelled run returned no chain")
	}
	if ch.Steps <= 0 || ch.Steps >= 10000 {
		t.Errorf("partial chain has %d steps, want a proper prefix", ch.Steps)
	}
}

func TestSample_InputValidation(t *testing.T) {
	s := New(1)
	good := initialEnsemble(t, 8, 3, 1)

	if _, err := s.Sample(context.Background(), gaussianLogProb, good, 0); err == nil {
		t.Error("accepted zero steps")
	}
	if _, err := s.Sample(context.Background(), gaussianLogProb, good[:3], 10); err == nil {
		t.Error("accepted fewer than four walkers")
	}
	ragged := [][]float64{{1, 2, 3}, {1, 2}, {1, 2, 3}, {1, 2, 3}}
	if _, err := s.Sample(context.Background(), gaussianLogProb, ragged, 10); err == nil {
		t.Error("accepted ragged walker dimensions")
	}
}

func TestSample_NaNLogProbTreatedAsRejection(t *testing.T) {
	s := New(5)
	walkers := initialEnsemble(t, 8, 2, 2)
	ch, err := s.Sample(context.Background(), func(v []float64) float64 {
		if v[0] > 0.5 {
			return math.NaN()
		}
		return gaussianLogProb(v)
	}, walkers, 200)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for step := range ch.LogProb {
		for w := range ch.LogProb[step] {
			if math.IsNaN(ch.LogProb[step][w]) {
				t.Fatalf("NaN log-posterior committed at step %d walker %d", step, w)
			}
		}
	}
}
