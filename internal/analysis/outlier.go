package analysis

import "math"

// ZClipThreshold is the z-score beyond which a daily return is treated as
// a data artifact (bad tick) rather than a genuine move.
const ZClipThreshold = 4.0

// ClipReturns bounds extreme returns to mean ± threshold·stddev using a
// sign-preserving clamp. Values are replaced, never dropped, so length and
// ordering survive for re-alignment against the bar series. A zero
// standard deviation returns the input unchanged.
func ClipReturns(returns []float64, threshold float64) []float64 {
	if len(returns) == 0 {
		return returns
	}

	mean := meanOf(returns)
	std := populationStd(returns, mean)
	if std == 0 {
		return returns
	}

	clipped := make([]float64, len(returns))
	for i, r := range returns {
		z := (r - mean) / std
		switch {
		case z > threshold:
			clipped[i] = mean + threshold*std
		case z < -threshold:
			clipped[i] = mean - threshold*std
		default:
			clipped[i] = r
		}
	}
	return clipped
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStd(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
