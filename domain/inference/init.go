package inference

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"lvilc/domain/cosmo"
)

// maxInitRetries bounds the per-walker rejection loop during ensemble
// initialization.
const maxInitRetries = 100

// DefaultInitScales are the per-coordinate Gaussian perturbation widths
// used to scatter walkers around the starting guess, in sampling space:
// 0.1 km/s/Mpc on H0_offset, 0.01 dex on the mass, 0.1 Gyr on t_fall.
func DefaultInitScales() [cosmo.NDim]float64 {
	return [cosmo.NDim]float64{0.1, 0.01, 0.1}
}

// InitWalkers builds the initial ensemble by perturbing the starting guess
// with small seeded Gaussian offsets. Every walker satisfies the prior and
// no two walkers coincide exactly; a degenerate ensemble breaks the
// affine-invariant proposal geometry. Draws that land outside the prior are
// rejected and redrawn up to maxInitRetries times, after which the run
// fails with the attempted bounds and guess.
func InitWalkers(guess cosmo.Params, prior Prior, nwalkers int, scales [cosmo.NDim]float64, src rand.Source) ([][]float64, error) {
	if nwalkers < 2*cosmo.NDim {
		return nil, fmt.Errorf("need at least %d walkers for %d parameters, got %d", 2*cosmo.NDim, cosmo.NDim, nwalkers)
	}
	center := guess.Vector()
	if !prior.Contains(center) {
		return nil, fmt.Errorf("starting guess %v is outside the prior (%s)", center, prior.Describe())
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	walkers := make([][]float64, 0, nwalkers)
	for w := 0; w < nwalkers; w++ {
		var pos []float64
		ok := false
		for try := 0; try < maxInitRetries; try++ {
			pos = make([]float64, cosmo.NDim)
			for i := range pos {
				pos[i] = center[i] + scales[i]*norm.Rand()
			}
			if prior.Contains(pos) && !containsVector(walkers, pos) {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("no valid initial position for walker %d after %d attempts: guess %v, prior %s",
				w, maxInitRetries, center, prior.Describe())
		}
		walkers = append(walkers, pos)
	}
	return walkers, nil
}

func containsVector(set [][]float64, v []float64) bool {
	for _, u := range set {
		same := true
		for i := range u {
			if u[i] != v[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}
