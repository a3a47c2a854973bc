// Package forecast simulates multi-day price distributions under Geometric
// Brownian Motion.
package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
)

const tradingDaysPerYear = 252

// Options parameterize one simulation run.
type Options struct {
	HorizonDays      int
	AnnualVolatility float64
	AnnualDrift      float64
	NumSimulations   int
	NumSamplePaths   int
	// Seed fixes the random source for reproducible runs. Zero means
	// time-seeded.
	Seed int64
}

// DefaultOptions returns the standard simulation parameters.
func DefaultOptions() Options {
	return Options{
		HorizonDays:      30,
		AnnualVolatility: 0.25,
		AnnualDrift:      0.073,
		NumSimulations:   10000,
		NumSamplePaths:   10,
	}
}

// Simulate runs a Monte Carlo GBM forecast starting at currentPrice. It is a
// pure function: each call owns its random source and scratch buffers, so
// concurrent calls for different symbols are safe.
//
// For every day the expected value is the cross-simulation mean; the 95%
// band is the [2.5, 97.5] percentile pair and the 68% band the [16, 84]
// pair, so lower95 <= lower68 <= upper68 <= upper95 holds by construction.
// Day 0 collapses every band onto currentPrice.
func Simulate(symbol string, currentPrice float64, opts Options) (*models.ForecastResult, error) {
	if currentPrice <= 0 {
		return nil, fmt.Errorf("forecast: non-positive price %v", currentPrice)
	}
	if opts.HorizonDays <= 0 {
		return nil, fmt.Errorf("forecast: horizon %d must be positive", opts.HorizonDays)
	}
	if opts.NumSimulations <= 0 {
		return nil, fmt.Errorf("forecast: need at least one simulation")
	}
	if opts.NumSamplePaths < 0 || opts.NumSamplePaths > opts.NumSimulations {
		return nil, fmt.Errorf("forecast: sample paths %d out of range", opts.NumSamplePaths)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	driftDay := opts.AnnualDrift / tradingDaysPerYear
	volDay := opts.AnnualVolatility / math.Sqrt(tradingDaysPerYear)
	days := opts.HorizonDays + 1

	// prices[t] holds every simulation's price at day t
	prices := make([][]float64, days)
	for t := range prices {
		prices[t] = make([]float64, opts.NumSimulations)
	}
	samplePaths := make([][]float64, opts.NumSamplePaths)

	for i := 0; i < opts.NumSimulations; i++ {
		price := currentPrice
		prices[0][i] = price
		var path []float64
		if i < opts.NumSamplePaths {
			path = make([]float64, days)
			path[0] = price
		}
		for t := 1; t < days; t++ {
			z := rng.NormFloat64()
			price *= math.Exp(driftDay - 0.5*volDay*volDay + volDay*z)
			prices[t][i] = price
			if path != nil {
				path[t] = price
			}
		}
		if path != nil {
			samplePaths[i] = path
		}
	}

	perDay := make([]models.DayForecast, days)
	scratch := make([]float64, opts.NumSimulations)
	for t := 0; t < days; t++ {
		copy(scratch, prices[t])
		sort.Float64s(scratch)

		sum := 0.0
		for _, p := range scratch {
			sum += p
		}
		d := models.DayForecast{
			Day:      t,
			Expected: sum / float64(len(scratch)),
			Lower95:  percentile(scratch, 2.5),
			Lower68:  percentile(scratch, 16),
			Upper68:  percentile(scratch, 84),
			Upper95:  percentile(scratch, 97.5),
		}
		// The mean of a skewed distribution can drift outside a narrow
		// band; clamp so the nesting invariant holds day by day.
		if d.Expected < d.Lower68 {
			d.Expected = d.Lower68
		}
		if d.Expected > d.Upper68 {
			d.Expected = d.Upper68
		}
		perDay[t] = d
	}

	return &models.ForecastResult{
		Symbol:      symbol,
		HorizonDays: opts.HorizonDays,
		PerDay:      perDay,
		SamplePaths: samplePaths,
	}, nil
}

// percentile returns the p-th percentile of sorted values by linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
