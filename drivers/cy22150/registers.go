// Package cy22150 provides constants for register addresses and field layouts
// used in the operation of the CY22150 dual-PLL clock synthesizer.
package cy22150

const (
	// 7-bit I2C address (fixed, 1101_001b).
	Address = 0x69

	// --- Register sub-addresses (8-bit value registers) ---

	regCLKOE = 0x09 // clock output enable, raw low-nibble mask
	regDVDR  = 0x0C // post-VCO divider, 7-bit direct
	regXDRV  = 0x12 // reference input drive strength, init only

	// PLL configuration group. Written in this order.
	regPLLHigh = 0x40 // 0xC0 | chargePump<<2 | pb bits 9..8
	regPLLLow  = 0x41 // pb bits 7..0
	regPLLQ    = 0x42 // p parity << 7 | (q - 2)

	// Clock-enable routing group. regCLKOE is always written last.
	regEnableA = 0x44 // lines 1 (0x20) and 2 (0x04)
	regEnableB = 0x45 // lines 3 (0x80) and 4 (0x10)
	regEnableC = 0x46 // 0x3F whenever any line is routed
)

// Divider field limits. The search and encode bound sets differ on purpose:
// the search keeps q inside what the reference can drive and d inside what
// keeps the VCO legal for the target, while encoding clamps to what the
// register fields can hold.
const (
	qSearchMin = 2
	qSearchMax = 127
	qEncodeMin = 2
	qEncodeMax = 129

	pMin = 16
	pMax = 1023

	dEncodeMin = 4
	dEncodeMax = 127

	// Internal VCO range; the feedback counter must keep ref*p/q inside it.
	vcoMinHz = 100e6
	vcoMaxHz = 400e6

	// q upper bound scales with the reference: qMax = ref / 250 kHz.
	qRefStepHz = 250e3

	// Search stops once the best error is within this of the target.
	exactEnoughHz = 0.5
)

// Enable mask for clock line 2, the only output line this firmware drives.
const maskClock2 = 0x02
