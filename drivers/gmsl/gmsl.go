// Package gmsl holds the device-agnostic half of the GMSL serializer drivers:
// the device handle, masked access to the 16-bit addressed / 8-bit valued
// register space, the diagnostic status records, and the capability table
// through which callers poll diagnostics without knowing the concrete part.
//
// Design notes:
// • I2C framing: write = [addr_hi, addr_lo, value]; read = [addr_hi, addr_lo]
// followed by a repeated-start read of one byte.
// • Every access touches exactly one 8-bit register. 16-bit logical values are
// assembled by callers from two independent reads and may tear.
// • No internal locking. A handle has a single owner that serialises all calls.
package gmsl

import (
	"log/slog"
	"time"

	"tinygo.org/x/drivers"

	"gmsl-go/errcode"
	"gmsl-go/x/conv"
)

// Caps are the capability counts a variant declares for its handle.
type Caps struct {
	Links             uint8
	LineFaultMonitors uint8
	PHYs              uint8
}

// Config is consumed by New. Zero values select defaults.
type Config struct {
	Address uint16 // 7-bit I2C address
	Name    string // tag for log lines
	Caps    Caps
	Logger  *slog.Logger        // defaults to slog.Default()
	Sleep   func(time.Duration) // defaults to time.Sleep
}

// Device is the handle for one serializer reachable at one bus address.
type Device struct {
	Caps  Caps
	Diag  *Diagnostics // process-wide table of the variant, never per-instance
	State any          // variant-owned mutable state

	bus   drivers.I2C
	addr  uint16
	log   *slog.Logger
	sleep func(time.Duration)

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [1]byte
}

// New constructs a handle. It does not touch the bus.
func New(bus drivers.I2C, cfg Config, diag *Diagnostics, state any) *Device {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Device{
		Caps:  cfg.Caps,
		Diag:  diag,
		State: state,
		bus:   bus,
		addr:  cfg.Address,
		log:   log.With(slog.String("dev", cfg.Name), slog.String("addr", conv.Hex8(uint8(cfg.Address)))),
		sleep: sleep,
	}
}

// Address returns the 7-bit bus address.
func (d *Device) Address() uint16 { return d.addr }

// Logger returns the handle's tagged logger.
func (d *Device) Logger() *slog.Logger { return d.log }

// Sleep blocks for dur using the configured delay primitive.
func (d *Device) Sleep(dur time.Duration) { d.sleep(dur) }

// Close releases the transport and owned state. Register access afterwards
// fails with errcode.Closed. The capability table stays shared.
func (d *Device) Close() error {
	if d.bus == nil {
		return errcode.Closed
	}
	d.bus = nil
	d.State = nil
	return nil
}
