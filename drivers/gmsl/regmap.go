package gmsl

import (
	"context"
	"log/slog"
	"math/bits"

	"gmsl-go/errcode"
	"gmsl-go/x/conv"
)

// Field describes a bitfield inside one 8-bit register. Mask bits must be
// contiguous; the field's bit position is the lowest set bit of Mask.
type Field struct {
	Addr uint16
	Mask uint8
}

// Pos returns the bit position of the field.
func (f Field) Pos() uint8 { return shift(f.Mask) }

// Width returns the number of bits in the field.
func (f Field) Width() uint8 { return uint8(bits.OnesCount8(f.Mask)) }

func shift(mask uint8) uint8 { return uint8(bits.TrailingZeros8(mask)) }

// Read fetches the register at addr and returns the field selected by mask,
// shifted down to bit 0.
func (d *Device) Read(addr uint16, mask uint8) (uint8, error) {
	if mask == 0 {
		return 0, errcode.Invalid("read "+conv.Hex16(addr), "empty mask")
	}
	if d.bus == nil {
		return 0, errcode.Closed
	}
	d.w[0] = byte(addr >> 8)
	d.w[1] = byte(addr)
	if err := d.bus.Tx(d.addr, d.w[:2], d.r[:1]); err != nil {
		return 0, errcode.Wrap(errcode.Transport, "read "+conv.Hex16(addr), err)
	}
	raw := d.r[0]
	v := (raw & mask) >> shift(mask)
	if d.log.Enabled(context.Background(), slog.LevelDebug) {
		d.log.LogAttrs(context.Background(), slog.LevelDebug, "reg read",
			slog.String("reg", conv.Hex16(addr)),
			slog.String("raw", conv.Hex8(raw)),
			slog.String("mask", conv.Hex8(mask)),
			slog.Int("val", int(v)),
		)
	}
	return v, nil
}

// Write stores value into the register at addr as one [hi, lo, value] frame.
func (d *Device) Write(addr uint16, value uint8) error {
	if d.bus == nil {
		return errcode.Closed
	}
	d.w[0] = byte(addr >> 8)
	d.w[1] = byte(addr)
	d.w[2] = value
	if err := d.bus.Tx(d.addr, d.w[:3], nil); err != nil {
		return errcode.Wrap(errcode.Transport, "write "+conv.Hex16(addr), err)
	}
	return nil
}

// Update performs read-modify-write of the field selected by mask; bits
// outside mask are written back unchanged. Not atomic against other writers.
func (d *Device) Update(addr uint16, value, mask uint8) error {
	if mask == 0 {
		return errcode.Invalid("update "+conv.Hex16(addr), "empty mask")
	}
	cur, err := d.Read(addr, 0xFF)
	if err != nil {
		return err
	}
	next := (cur &^ mask) | ((value << shift(mask)) & mask)
	return d.Write(addr, next)
}

// Get reads field f.
func (d *Device) Get(f Field) (uint8, error) { return d.Read(f.Addr, f.Mask) }

// Flag reads a single-bit (or any-bit-set) field as a bool.
func (d *Device) Flag(f Field) (bool, error) {
	v, err := d.Read(f.Addr, f.Mask)
	return v != 0, err
}

// Set updates field f to v, preserving the rest of the register.
func (d *Device) Set(f Field, v uint8) error { return d.Update(f.Addr, v, f.Mask) }

// SetFlag updates a single-bit field.
func (d *Device) SetFlag(f Field, on bool) error {
	var v uint8
	if on {
		v = 1
	}
	return d.Update(f.Addr, v, f.Mask)
}
