package cy22150

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Errors (TinyGo-safe; no fmt).
var (
	ErrNotFound       = errors.New("cy22150: no response on bus")
	ErrNotInitialized = errors.New("cy22150: Init not called")
	ErrRefRequired    = errors.New("cy22150: RefHz must be set")
)

// chipState mirrors one output-stage configuration.
type chipState struct {
	freqHz  float64
	enabled bool
}

// Config holds construction parameters. RefHz is required; everything else
// defaults.
type Config struct {
	// Address defaults to Address (0x69) if zero.
	Address uint16
	// RefHz is the reference oscillator rate feeding the chip. Fixed for the
	// Device's lifetime; it bounds every divider search.
	RefHz float64
	// DefaultFreqHz is the power-on output frequency programmed by Init.
	// Defaults to RefHz if zero.
	DefaultFreqHz float64
	// DefaultEnabled is the power-on output state programmed by Init.
	DefaultEnabled bool
}

// Validate basic required fields.
func (c Config) Validate() error {
	if c.RefHz <= 0 {
		return ErrRefRequired
	}
	return nil
}

// Device drives a CY22150 on an I2C bus and mirrors its register state in
// software. Three state copies exist: committed (what the registers encode
// right now), pending (uncommitted caller intent) and the power-on default.
// The Device is the sole writer of hardware truth; committed is never read
// back from the chip.
//
// Not safe for concurrent use. Commit is a sequence of ordered bus writes
// with hardware-meaningless intermediate states, so callers crossing a
// goroutine boundary must hold one exclusive lock across every call,
// including the whole of Commit.
type Device struct {
	i2c   drivers.I2C
	addr  uint16
	refHz float64

	powerOn   chipState
	committed chipState
	pending   chipState

	initialized bool

	// Fixed write buffer to avoid per-call heap allocations.
	w [2]byte
}

// New constructs a Device with supplied config. No bus traffic; call Init
// before anything else.
func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = Address
	}
	def := chipState{freqHz: cfg.DefaultFreqHz, enabled: cfg.DefaultEnabled}
	if def.freqHz == 0 {
		def.freqHz = cfg.RefHz
	}
	return &Device{
		i2c:       i2c,
		addr:      addr,
		refHz:     cfg.RefHz,
		powerOn:   def,
		committed: def,
		pending:   def,
	}
}

// SetFrequency stores hz as the pending output frequency. No hardware access
// and no validation: out-of-range requests are clamped at Commit, never
// rejected.
func (d *Device) SetFrequency(hz float64) {
	d.pending.freqHz = hz
}

// SetEnabled stores the pending output state. No hardware access.
func (d *Device) SetEnabled(on bool) {
	d.pending.enabled = on
}

// Frequency returns the committed output frequency: what the chip is
// producing now, which after a Commit is the quantized realization of the
// request, not the request itself.
func (d *Device) Frequency() float64 { return d.committed.freqHz }

// Enabled returns the committed output state.
func (d *Device) Enabled() bool { return d.committed.enabled }

// Init programs the one-time registers and commits the power-on default.
// Must be called before Commit.
func (d *Device) Init() error {
	// All clocks off before anything else touches the PLL.
	if err := d.writeReg(regCLKOE, 0x00); err != nil {
		return err
	}
	if err := d.writeReg(regXDRV, xdrvFor(d.refHz)); err != nil {
		return err
	}
	d.initialized = true
	d.pending = d.powerOn
	return d.Commit()
}

// Commit programs the pending state into the chip and advances the committed
// state to what was actually realized. Write order is fixed by the hardware:
// output off, then PLL high/low/Q and the post divider, then the enable group
// if the output should be on. A bus error mid-sequence leaves the output
// disabled with partial divider registers written, which is the chip's own
// glitch-avoidance design; committed state is only advanced after the full
// sequence lands.
func (d *Device) Commit() error {
	if !d.initialized {
		return ErrNotInitialized
	}

	triple, _ := findDividers(d.pending.freqHz, d.refHz)
	regs, realized := encodeDividers(triple, d.refHz)

	// Glitch guard: never reprogram dividers with the output live.
	if err := d.writeEnableMask(0x00); err != nil {
		return err
	}

	if err := d.writeReg(regPLLHigh, regs.pllHigh); err != nil {
		return err
	}
	if err := d.writeReg(regPLLLow, regs.pllLow); err != nil {
		return err
	}
	if err := d.writeReg(regPLLQ, regs.pllQ); err != nil {
		return err
	}
	if err := d.writeReg(regDVDR, regs.dvdr); err != nil {
		return err
	}

	if d.pending.enabled {
		if err := d.writeEnableMask(maskClock2); err != nil {
			return err
		}
	}

	d.committed = chipState{freqHz: realized, enabled: d.pending.enabled}
	// Re-synchronize pending so set-then-get converges on truth even without
	// a read-back.
	d.pending.freqHz = realized
	return nil
}

// writeEnableMask programs the clock-enable group for a 4-bit line mask.
// The routing registers are only touched when something is enabled; regCLKOE
// is always written, and always last in the group.
func (d *Device) writeEnableMask(mask byte) error {
	e := encodeEnableMask(mask)
	if e.clkoe != 0 {
		if err := d.writeReg(regEnableA, e.regA); err != nil {
			return err
		}
		if err := d.writeReg(regEnableB, e.regB); err != nil {
			return err
		}
		if err := d.writeReg(regEnableC, e.regC); err != nil {
			return err
		}
	}
	return d.writeReg(regCLKOE, e.clkoe)
}
