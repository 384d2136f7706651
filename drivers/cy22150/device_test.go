package cy22150

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

var errFakeBus = errors.New("fake bus failure")

// fakeI2C records register writes and can fail on demand.
type fakeI2C struct {
	writes   [][2]byte // [register, value] in write order
	reads    int
	failAt   int    // 1-based write index to fail at; 0 = never
	probeErr bool   // fail address-only reads (Detect)
	addr     uint16 // expected bus address; 0 = the chip default
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	want := f.addr
	if want == 0 {
		want = Address
	}
	if addr != want {
		return errFakeBus
	}
	if len(w) == 0 {
		f.reads++
		if f.probeErr {
			return errFakeBus
		}
		return nil
	}
	if len(w) != 2 || len(r) != 0 {
		return errFakeBus
	}
	if f.failAt > 0 && len(f.writes)+1 == f.failAt {
		return errFakeBus
	}
	f.writes = append(f.writes, [2]byte{w[0], w[1]})
	return nil
}

func newTestDevice() (*Device, *fakeI2C) {
	bus := &fakeI2C{}
	return New(bus, Config{RefHz: refHz}), bus
}

func mustInit(t *testing.T, d *Device) {
	t.Helper()
	if err := d.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
}

func assertWrites(t *testing.T, got, want [][2]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("write count = %d, want %d\ngot:  %x\nwant: %x", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("write %d = [%#02x %#02x], want [%#02x %#02x]",
				i, got[i][0], got[i][1], want[i][0], want[i][1])
		}
	}
}

func TestDetect(t *testing.T) {
	bus := &fakeI2C{}
	if err := Detect(bus, 0); err != nil {
		t.Fatalf("detect: %v", err)
	}
	if bus.reads != 1 {
		t.Fatalf("reads = %d, want 1", bus.reads)
	}

	bus = &fakeI2C{probeErr: true}
	if err := Detect(bus, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("detect = %v, want ErrNotFound", err)
	}
}

// Detect must probe the caller's address, matching the override Config.Address
// offers for rewired parts.
func TestDetectAddressOverride(t *testing.T) {
	bus := &fakeI2C{addr: 0x6A}
	if err := Detect(bus, 0x6A); err != nil {
		t.Fatalf("detect at 0x6A: %v", err)
	}
	if bus.reads != 1 {
		t.Fatalf("reads = %d, want 1", bus.reads)
	}
	if err := Detect(bus, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("detect at default on a rewired bus = %v, want ErrNotFound", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); !errors.Is(err, ErrRefRequired) {
		t.Fatalf("empty config: %v", err)
	}
	if err := (Config{RefHz: refHz}).Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}
}

// Init must disable everything, set drive strength once, then push the
// power-on default through the normal commit path.
func TestInitSequence(t *testing.T) {
	d, bus := newTestDevice()
	mustInit(t, d)

	// Default state is the reference itself (12.5 MHz), output off.
	// 12.5 MHz encodes as q=2, p=64 (pb=28, cp=1), d=32.
	assertWrites(t, bus.writes, [][2]byte{
		{regCLKOE, 0x00},
		{regXDRV, 0x20},
		{regCLKOE, 0x00},
		{regPLLHigh, 0xC4},
		{regPLLLow, 0x1C},
		{regPLLQ, 0x00},
		{regDVDR, 0x20},
	})
	if d.Frequency() != refHz {
		t.Fatalf("committed frequency = %v, want reference", d.Frequency())
	}
	if d.Enabled() {
		t.Fatalf("output must be disabled after init")
	}
}

func TestCommitBeforeInit(t *testing.T) {
	d, _ := newTestDevice()
	if err := d.Commit(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("commit before init = %v, want ErrNotInitialized", err)
	}
}

// Full scenario from the board bring-up: 12.5 MHz reference, request 25 MHz
// enabled. The realized frequency is exact, CLKOE for clock line 2 is the
// last write, and the committed state reflects the realization.
func TestCommit25MHzEnabled(t *testing.T) {
	d, bus := newTestDevice()
	mustInit(t, d)
	bus.writes = nil

	d.SetFrequency(25e6)
	d.SetEnabled(true)
	if err := d.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertWrites(t, bus.writes, [][2]byte{
		{regCLKOE, 0x00}, // glitch guard before divider changes
		{regPLLHigh, 0xC4},
		{regPLLLow, 0x1C},
		{regPLLQ, 0x00},
		{regDVDR, 0x10},
		{regEnableA, 0x04},
		{regEnableB, 0x00},
		{regEnableC, 0x3F},
		{regCLKOE, 0x02},
	})
	if d.Frequency() != 25e6 {
		t.Fatalf("frequency = %v, want 25 MHz", d.Frequency())
	}
	if !d.Enabled() {
		t.Fatalf("enabled = false, want true")
	}
}

func TestCommitDisabledLeavesOutputOff(t *testing.T) {
	d, bus := newTestDevice()
	mustInit(t, d)
	bus.writes = nil

	d.SetFrequency(25e6)
	if err := d.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	last := bus.writes[len(bus.writes)-1]
	if last[0] != regDVDR {
		t.Fatalf("last write to %#02x, want divider (no re-enable)", last[0])
	}
	for _, w := range bus.writes {
		if w[0] == regCLKOE && w[1] != 0x00 {
			t.Fatalf("CLKOE written %#02x while disabled", w[1])
		}
	}
}

func TestCommitIdempotent(t *testing.T) {
	d, bus := newTestDevice()
	mustInit(t, d)

	d.SetFrequency(25e6)
	d.SetEnabled(true)
	if err := d.Commit(); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	first := append([][2]byte(nil), bus.writes...)
	freq, en := d.Frequency(), d.Enabled()

	bus.writes = nil
	if err := d.Commit(); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	// Same pending state, same writes (minus the init prefix of the first).
	assertWrites(t, bus.writes, first[len(first)-9:])
	if d.Frequency() != freq || d.Enabled() != en {
		t.Fatalf("committed state drifted: %v/%v -> %v/%v", freq, en, d.Frequency(), d.Enabled())
	}
}

// Reads report committed state, never pending intent.
func TestGettersIgnorePending(t *testing.T) {
	d, _ := newTestDevice()
	mustInit(t, d)

	d.SetFrequency(66e6)
	d.SetEnabled(true)
	if d.Frequency() != refHz {
		t.Fatalf("frequency reports pending value before commit")
	}
	if d.Enabled() {
		t.Fatalf("enabled reports pending value before commit")
	}
}

// After a commit, a re-read reports exactly what the search-then-encode
// pipeline realizes: the search result pushed through the encode clamp.
// Exactly realizable targets come back verbatim.
func TestRoundTripQuantization(t *testing.T) {
	cases := []struct {
		target float64
		exact  bool
	}{
		{1e6, true},
		{25e6, true},
		{13.333e6, false}, // quantized, best triple already encode-legal
		{66.67e6, false},  // quantized, best triple needs the encode clamp
	}
	for _, c := range cases {
		d, _ := newTestDevice()
		mustInit(t, d)

		d.SetFrequency(c.target)
		if err := d.Commit(); err != nil {
			t.Fatalf("commit %v: %v", c.target, err)
		}

		triple, _ := findDividers(c.target, refHz)
		_, want := encodeDividers(triple, refHz)
		if got := d.Frequency(); got != want {
			t.Fatalf("target %v realized %v, want encoder's %v", c.target, got, want)
		}
		if c.exact && d.Frequency() != c.target {
			t.Fatalf("target %v should realize exactly, got %v", c.target, d.Frequency())
		}
	}
}

// The search's d range reaches below the encode floor for targets near the
// top of the output range; the encoder's clamp is then the final authority.
// For 66.67 MHz the search settles on {q:2, p:32, d:3} (3.3 kHz error) and
// the encoder raises d to 4, so the chip lands on 50 MHz exactly. The
// committed state and the re-synced pending value must both report that, and
// a further commit must stay put.
func TestCommitReportsPostClampRealization(t *testing.T) {
	d, _ := newTestDevice()
	mustInit(t, d)

	d.SetFrequency(66.67e6)
	if err := d.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if d.Frequency() != 50e6 {
		t.Fatalf("frequency = %v, want 50 MHz (post-clamp)", d.Frequency())
	}

	// 50 MHz is exactly realizable with an encode-legal triple, so the
	// converged state is stable.
	if err := d.Commit(); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if d.Frequency() != 50e6 {
		t.Fatalf("frequency drifted to %v after recommit", d.Frequency())
	}
}

// Requests below anything realizable clamp instead of failing.
func TestCommitClampsExtremeRequests(t *testing.T) {
	for _, target := range []float64{1, 1e10} {
		d, _ := newTestDevice()
		mustInit(t, d)

		d.SetFrequency(target)
		if err := d.Commit(); err != nil {
			t.Fatalf("commit %v: %v", target, err)
		}
		if d.Frequency() <= 0 {
			t.Fatalf("target %v: realized %v", target, d.Frequency())
		}
	}
}

// A bus failure mid-sequence must propagate and leave committed state alone.
// (The chip itself is left with the output disabled, by design.)
func TestCommitBusErrorKeepsCommitted(t *testing.T) {
	d, bus := newTestDevice()
	mustInit(t, d)
	freq, en := d.Frequency(), d.Enabled()

	bus.failAt = len(bus.writes) + 3 // fail inside the PLL register group
	d.SetFrequency(25e6)
	d.SetEnabled(true)
	if err := d.Commit(); !errors.Is(err, errFakeBus) {
		t.Fatalf("commit = %v, want bus error", err)
	}
	if d.Frequency() != freq || d.Enabled() != en {
		t.Fatalf("committed state advanced past a failed commit")
	}
}

func TestNewDefaults(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus, Config{RefHz: refHz, DefaultFreqHz: 1e6, DefaultEnabled: true})
	mustInit(t, d)

	if d.Frequency() != 1e6 {
		t.Fatalf("default frequency = %v, want 1 MHz", d.Frequency())
	}
	if !d.Enabled() {
		t.Fatalf("default enabled not applied")
	}
	last := bus.writes[len(bus.writes)-1]
	if last != [2]byte{regCLKOE, maskClock2} {
		t.Fatalf("last init write = %x, want CLKOE=0x02", last)
	}
}
