// Package gmsltest provides a host-side register-file simulator that
// implements drivers.I2C with the 16-bit address framing used by the GMSL
// serializers. It records per-register read counts and write order and can be
// told to fail accesses to chosen registers.
package gmsltest

import (
	"errors"
	"sort"
)

var (
	ErrNack  = errors.New("gmsltest: nack")
	ErrFrame = errors.New("gmsltest: malformed frame")
)

// Access is one recorded register write.
type Access struct {
	Addr  uint16
	Value uint8
}

// Regs is a byte-addressed register store. The zero value is not usable; use
// New. Not safe for concurrent use.
type Regs struct {
	// Addr is the device address that ACKs. Zero accepts any address.
	Addr uint16

	mem    map[uint16]uint8
	reads  map[uint16]int
	writes []Access
	failOn map[uint16]error
	total  int
}

// New returns a simulator preloaded with defaults (copied).
func New(defaults map[uint16]uint8) *Regs {
	r := &Regs{
		mem:    make(map[uint16]uint8, len(defaults)),
		reads:  make(map[uint16]int),
		failOn: make(map[uint16]error),
	}
	for a, v := range defaults {
		r.mem[a] = v
	}
	return r
}

// Tx implements drivers.I2C.
func (r *Regs) Tx(addr uint16, w, rd []byte) error {
	if r.Addr != 0 && addr != r.Addr {
		return ErrNack
	}
	if len(w) < 2 {
		return ErrFrame
	}
	reg := uint16(w[0])<<8 | uint16(w[1])
	if err := r.failOn[reg]; err != nil {
		return err
	}
	switch {
	case len(w) == 3 && len(rd) == 0:
		r.mem[reg] = w[2]
		r.writes = append(r.writes, Access{Addr: reg, Value: w[2]})
	case len(w) == 2 && len(rd) > 0:
		for i := range rd {
			a := reg + uint16(i)
			rd[i] = r.mem[a]
			r.reads[a]++
			r.total++
		}
	default:
		return ErrFrame
	}
	return nil
}

// Set stores v without recording a write.
func (r *Regs) Set(addr uint16, v uint8) { r.mem[addr] = v }

// Get returns the stored byte.
func (r *Regs) Get(addr uint16) uint8 { return r.mem[addr] }

// FailOn makes every access to addr return err. A nil err clears it.
func (r *Regs) FailOn(addr uint16, err error) {
	if err == nil {
		delete(r.failOn, addr)
		return
	}
	r.failOn[addr] = err
}

// ReadCount returns how many times addr was read.
func (r *Regs) ReadCount(addr uint16) int { return r.reads[addr] }

// TotalReads returns the number of register reads since the last Reset.
func (r *Regs) TotalReads() int { return r.total }

// ReadAddrs returns the distinct addresses read, sorted.
func (r *Regs) ReadAddrs() []uint16 {
	out := make([]uint16, 0, len(r.reads))
	for a := range r.reads {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Writes returns the recorded writes in issue order.
func (r *Regs) Writes() []Access { return append([]Access(nil), r.writes...) }

// Reset clears the access counters and write log; register contents stay.
func (r *Regs) Reset() {
	r.reads = make(map[uint16]int)
	r.writes = nil
	r.total = 0
}
