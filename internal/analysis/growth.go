// Package analysis holds the pure numeric transforms applied to on-chain data
// before it is handed to the language models.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
)

// smoothingWindow is the moving-average window applied to hourly growth rates.
const smoothingWindow = 3

// GrowthScore turns a series of hourly transfer counts into a 0-100 momentum
// score. Recent hours weigh exponentially more than older ones. Series too
// short to produce a smoothed growth rate score 0; the function never panics
// and never returns NaN. The input slice is not modified.
func GrowthScore(samples []dataflows.TransferCount) float64 {
	if len(samples) < 2 {
		return 0
	}

	ordered := make([]dataflows.TransferCount, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return sampleTime(ordered[i]).Before(sampleTime(ordered[j]))
	})

	// Hourly percent growth between consecutive buckets. A zero previous
	// count yields rate 0 rather than a division by zero.
	growthRates := make([]float64, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		prev := float64(ordered[i-1].Count)
		curr := float64(ordered[i].Count)
		rate := 0.0
		if prev > 0 {
			rate = (curr - prev) / prev * 100
		}
		growthRates = append(growthRates, rate)
	}

	if len(growthRates) < smoothingWindow {
		return 0
	}

	smoothed := make([]float64, 0, len(growthRates)-smoothingWindow+1)
	for i := 0; i+smoothingWindow <= len(growthRates); i++ {
		sum := 0.0
		for _, rate := range growthRates[i : i+smoothingWindow] {
			sum += rate
		}
		smoothed = append(smoothed, sum/smoothingWindow)
	}

	// Min-max scale into [0,100]; a flat series scales to all zeros.
	minGrowth, maxGrowth := smoothed[0], smoothed[0]
	for _, rate := range smoothed[1:] {
		minGrowth = math.Min(minGrowth, rate)
		maxGrowth = math.Max(maxGrowth, rate)
	}

	scaled := make([]float64, len(smoothed))
	if maxGrowth > minGrowth {
		for i, rate := range smoothed {
			scaled[i] = (rate - minGrowth) / (maxGrowth - minGrowth) * 100
		}
	}

	// Exponential recency weights: weight = e^(i - N) for index i of N.
	var weightedSum, weightTotal float64
	n := float64(len(scaled))
	for i, rate := range scaled {
		weight := math.Exp(float64(i) - n)
		weightedSum += rate * weight
		weightTotal += weight
	}

	if weightTotal == 0 {
		return 0
	}

	return math.Round(weightedSum/weightTotal*100) / 100
}

// sampleTime parses a bucket timestamp; unparseable dates sort first so they
// contribute to the oldest end of the series instead of corrupting the recent
// weighting.
func sampleTime(tc dataflows.TransferCount) time.Time {
	t, err := dataflows.ParseDateString(tc.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
