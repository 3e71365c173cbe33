// Package max96717 provides a TinyGo-friendly driver for the MAX96717 GMSL2
// serializer: CSI-2 port, PHY and video pipe bring-up, plus the diagnostic
// checks exposed through the gmsl capability table.
//
// Design notes (datasheet references):
// • I2C, 16-bit register addresses, 8-bit registers; default 7-bit address 0x40.
// • One CSI-2 port built from two PHYs of two data lanes each; 1, 2 or 4 lanes.
// • One video pipe (Z). Pixel doubling for 8/10/12-bit data types with an
// optional soft-BPP override.
// • Every diagnostic re-reads hardware. Transport errors abort a check; faults
// found in successfully read state are reported through the fault flag only.
//
// Concurrency: not safe for concurrent use. Serialise calls per device.
package max96717

import (
	"log/slog"
	"time"

	"tinygo.org/x/drivers"

	"gmsl-go/drivers/gmsl"
	"gmsl-go/errcode"
)

// Caps declared by the part.
var Caps = gmsl.Caps{
	Links:             1,
	LineFaultMonitors: 2,
	PHYs:              2,
}

// Diag is the capability table shared by every MAX96717 handle.
var Diag = gmsl.Diagnostics{
	DeviceID:              DeviceID,
	DeviceRevision:        DeviceRevision,
	PartConfig:            PartConfig,
	LinkDecodeErrors:      LinkDecodeErrors,
	LinkIdleErrors:        LinkIdleErrors,
	LinkLock:              LinkLock,
	LinkMaxRetransmission: LinkMaxRetransmission,
	MIPIRxErrors:          MIPIRxErrors,
	PixelClockDrift:       PixelClockDrift,
	LineFault:             LineFault,
	PixelClockDetect:      PixelClockDetect,
	VideoOverflow:         VideoOverflow,
	MemoryECC2Bit:         MemoryECC2Bit,
	PHYLowPowerErrors:     PHYLowPowerErrors,
	MIPIPacketCount:       MIPIPacketCount,
	StreamID:              StreamID,
	EyeOpening:            EyeOpening,
	RemoteError:           RemoteError,
}

// Config describes one serializer instance. Port, Streams and Pipe are only
// used by Bringup.
type Config struct {
	Address uint16
	Name    string
	Logger  *slog.Logger
	Sleep   func(time.Duration)

	Port    *CSIPort
	Streams []Stream
	Pipe    *Pipe
}

// DefaultConfig provides minimal defaults.
func DefaultConfig() Config {
	return Config{Address: AddressDefault}
}

// Validate checks everything Bringup would write, without touching hardware.
func (c Config) Validate() error {
	if c.Address == 0 || c.Address > 0x7F {
		return errcode.Invalid("config", "address must be a non-zero 7-bit value")
	}
	if c.Port != nil {
		if _, err := c.Port.plan(); err != nil {
			return err
		}
	}
	for _, s := range c.Streams {
		if err := s.validate(); err != nil {
			return err
		}
	}
	if c.Pipe != nil {
		if err := c.Pipe.validate(); err != nil {
			return err
		}
	}
	return nil
}

// State is the per-handle mutable state, stored in gmsl.Device.State.
type State struct {
	Port *CSIPort // last port written by ConfigureCSI
	Pipe *Pipe    // last pipe written by ConfigurePipe
}

// New constructs a handle bound to the MAX96717 capability table. It does not
// touch the bus.
func New(bus drivers.I2C, cfg Config) (*gmsl.Device, error) {
	if cfg.Address == 0 {
		cfg.Address = AddressDefault
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "max96717"
	}
	return gmsl.New(bus, gmsl.Config{
		Address: cfg.Address,
		Name:    name,
		Caps:    Caps,
		Logger:  cfg.Logger,
		Sleep:   cfg.Sleep,
	}, &Diag, &State{}), nil
}

// Remove releases the handle's state.
func Remove(d *gmsl.Device) error { return d.Close() }

// Bringup applies cfg's port, stream selection and pipe, in that order.
func Bringup(d *gmsl.Device, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Port != nil {
		if err := ConfigureCSI(d, *cfg.Port); err != nil {
			return err
		}
	}
	if len(cfg.Streams) > 0 {
		var vcs uint16
		for _, s := range cfg.Streams {
			vcs |= 1 << s.VC
			if err := SetStreamDataType(d, s.VC, s.DataType, s.Enabled); err != nil {
				return err
			}
		}
		if err := SelectStreams(d, vcs); err != nil {
			return err
		}
	}
	if cfg.Pipe != nil {
		if err := ConfigurePipe(d, *cfg.Pipe); err != nil {
			return err
		}
	}
	return nil
}

// state returns the handle's State. A handle created without one gets a
// fresh State installed, so later writes are recorded. A handle carrying
// another driver's state is left untouched and gets a detached State.
func state(d *gmsl.Device) *State {
	if s, ok := d.State.(*State); ok && s != nil {
		return s
	}
	s := &State{}
	if _, ours := d.State.(*State); ours || d.State == nil {
		d.State = s
	}
	return s
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
