package cy22150

import (
	"github.com/joesugar/raspberrypi-pico-cy22150/x/mathx"
)

// dividerTriple is one PLL configuration. The realized output frequency is
// ref * p / (q * d).
type dividerTriple struct {
	q uint16 // reference divider
	p uint16 // feedback counter total
	d uint16 // post-VCO divider
}

// fallbackTriple is returned when the search ranges are empty (degenerate
// target/reference combinations). Every field sits at its legal minimum so
// the encode clamp passes it through unchanged.
var fallbackTriple = dividerTriple{q: 2, p: 16, d: 4}

// findDividers returns the triple whose realized frequency is nearest
// targetHz for the fixed reference refHz, plus that realized frequency.
//
// Iteration order is load-bearing: q ascends from its minimum, d descends
// from its maximum, and only a strictly smaller error replaces the best seen
// so far. A later triple that ties an earlier one never wins, and the search
// stops as soon as the error is within 0.5 Hz. Different tie-breaks would
// program different (equal-frequency) register values, so none of this is
// free to change.
func findDividers(targetHz, refHz float64) (dividerTriple, float64) {
	best := fallbackTriple
	bestErr := targetHz

	if bestErr <= exactEnoughHz {
		// Nothing to search; the divider bounds below are meaningless for
		// targets this small (or non-positive).
		return best, realize(best, refHz)
	}

	qMax := int(refHz / qRefStepHz)
	if qMax > qSearchMax {
		qMax = qSearchMax
	}

	dLo := int(1 + 100e6/targetHz)
	dHi := int(1+400e6/targetHz) - 1
	if dHi > dEncodeMax {
		dHi = dEncodeMax
	}

	bestFreq := realize(best, refHz)
	for q := qSearchMin; q <= qMax && bestErr > exactEnoughHz; q++ {
		for d := dHi; d >= dLo && bestErr > exactEnoughHz; d-- {
			p := roundHalfUp(targetHz / refHz * float64(q) * float64(d))
			p = mathx.Clamp(p, pMin, pMax)

			f := refHz * float64(p) / (float64(q) * float64(d))
			if err := mathx.Abs(f - targetHz); err < bestErr {
				bestErr = err
				bestFreq = f
				best = dividerTriple{q: uint16(q), p: uint16(p), d: uint16(d)}
			}
		}
	}
	return best, bestFreq
}

// roundHalfUp truncates unless the fractional part is strictly above one
// half. Matches the chip vendor's reference arithmetic, which is why this is
// not math.Round.
func roundHalfUp(v float64) int {
	i := int(v)
	if v-float64(i) > 0.5 {
		return i + 1
	}
	return i
}

func realize(t dividerTriple, refHz float64) float64 {
	return refHz * float64(t.p) / (float64(t.q) * float64(t.d))
}
