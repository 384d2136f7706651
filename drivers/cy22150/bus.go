package cy22150

import (
	"tinygo.org/x/drivers"
)

// Detect probes addr with a one-byte read and no register selection. A zero
// addr probes the chip's fixed default, matching the Config.Address handling
// in New. Callers are expected to probe before constructing a Device; the
// driver itself never verifies the bus. Returns ErrNotFound if nothing
// answers.
func Detect(i2c drivers.I2C, addr uint16) error {
	if addr == 0 {
		addr = Address
	}
	var r [1]byte
	if err := i2c.Tx(addr, nil, r[:]); err != nil {
		return ErrNotFound
	}
	return nil
}

// I2C 8-bit register write: [sub-address, value], address first, no read-back.
// The transfer is synchronous and all-or-nothing per pair; Commit's ordering
// guarantees depend on that.

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.i2c.Tx(d.addr, d.w[:2], nil)
}
