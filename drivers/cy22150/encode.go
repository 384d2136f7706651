package cy22150

import (
	"github.com/joesugar/raspberrypi-pico-cy22150/x/mathx"
)

// dividerRegs holds the byte values for the four PLL divider registers.
type dividerRegs struct {
	pllHigh byte // regPLLHigh
	pllLow  byte // regPLLLow
	pllQ    byte // regPLLQ
	dvdr    byte // regDVDR
}

// enableRegs holds the byte values for the clock-enable register group.
type enableRegs struct {
	regA  byte // regEnableA
	regB  byte // regEnableB
	regC  byte // regEnableC
	clkoe byte // regCLKOE, always the raw mask
}

// encodeDividers clamps t into the ranges the register fields can express and
// derives the register bytes. The clamp here is applied even to triples that
// already passed the search bounds: the two bound sets are not the same
// (encode allows q up to 129 and constrains p per-q to the VCO window), and a
// triple computed under one set must still land legally under the other.
//
// The returned frequency uses the post-clamp values. It, not the search
// result, is the frequency the chip will actually produce.
func encodeDividers(t dividerTriple, refHz float64) (dividerRegs, float64) {
	// Reference divider: capped by what the reference can drive, then by the
	// field range.
	qf := float64(t.q)
	if qRefMax := float64(int(refHz / qRefStepHz)); qf > qRefMax {
		qf = qRefMax
	}
	q := uint16(mathx.Clamp(qf, qEncodeMin, qEncodeMax))

	// Feedback counter: keep the VCO (ref * p / q) inside 100..400 MHz, then
	// inside the field range.
	pf := float64(t.p)
	pf = mathx.Clamp(pf, vcoMinHz/refHz*float64(q), vcoMaxHz/refHz*float64(q))
	p := uint16(mathx.Clamp(pf, pMin, pMax))

	// Post-VCO divider is a plain field clamp.
	d := mathx.Clamp(t.d, dEncodeMin, dEncodeMax)

	// Charge pump code follows the final p value.
	cp := chargePump(p)

	po := p % 2            // parity bit, stored in the Q register
	pb := (p-po)/2 - 4     // 10-bit counter body, split high/low
	regs := dividerRegs{
		pllHigh: 0xC0 | cp<<2 | byte(pb>>8),
		pllLow:  byte(pb),
		pllQ:    byte(po)<<7 | byte(q-2),
		dvdr:    byte(d),
	}
	return regs, refHz * float64(p) / (float64(q) * float64(d))
}

// chargePump selects the 3-bit charge pump code for a final p value.
// Breakpoints are from the datasheet's recommended settings.
func chargePump(p uint16) byte {
	switch {
	case p < 45:
		return 0
	case p < 480:
		return 1
	case p < 640:
		return 2
	case p < 800:
		return 3
	default:
		return 4
	}
}

// encodeEnableMask expands a 4-bit clock line mask into the enable register
// group. Lines 1..4 scatter across regEnableA/regEnableB; regEnableC carries
// 0x3F whenever anything is routed. regCLKOE always receives the raw mask.
// Bits above the low nibble are ignored, matching the chip's addressed lines.
func encodeEnableMask(mask byte) enableRegs {
	mask &= 0x0F

	e := enableRegs{clkoe: mask}
	if mask == 0 {
		return e
	}
	if mask&0x01 != 0 {
		e.regA |= 0x20
	}
	if mask&0x02 != 0 {
		e.regA |= 0x04
	}
	if mask&0x04 != 0 {
		e.regB |= 0x80
	}
	if mask&0x08 != 0 {
		e.regB |= 0x10
	}
	e.regC = 0x3F
	return e
}

// xdrvFor selects the reference drive strength byte for a reference rate.
// Fixed thresholds; written once during Init.
func xdrvFor(refHz float64) byte {
	switch {
	case refHz <= 1e6:
		return 0x00
	case refHz <= 25e6:
		return 0x20
	case refHz <= 50e6:
		return 0x28
	case refHz <= 90e6:
		return 0x30
	case refHz <= 133e6:
		return 0x38
	default:
		return 0x00
	}
}
