// Package config decodes the YAML description of the serializers on a board
// into driver configurations.
//
//	devices:
//	  - name: cam0
//	    type: max96717
//	    address: 0x40
//	    port:
//	      lanes: 2
//	      tunnel_mode: false
//	      phys:
//	        - id: 1
//	          lane_map: [0, 1]
//	          data_inverted: [false, false]
//	          clock_inverted: false
//	    streams:
//	      - {vc: 1, data_type: 0x2a, enabled: true}
//	    pipe:
//	      double_bpp8: true
//	      soft_bpp: 16
//	      stream_id: 0
package config

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"
	"tinygo.org/x/drivers"

	"gmsl-go/drivers/gmsl"
	"gmsl-go/drivers/max96717"
	"gmsl-go/errcode"
	"gmsl-go/x/mathx"
)

// TypeMAX96717 is the only serializer type currently known.
const TypeMAX96717 = "max96717"

type File struct {
	Devices []Device `yaml:"devices"`
}

type Device struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Address uint16   `yaml:"address"`
	Port    *Port    `yaml:"port,omitempty"`
	Pipe    *Pipe    `yaml:"pipe,omitempty"`
	Streams []Stream `yaml:"streams,omitempty"`
}

type Port struct {
	Lanes      uint8 `yaml:"lanes"`
	TunnelMode bool  `yaml:"tunnel_mode"`
	PHYs       []PHY `yaml:"phys,omitempty"`
}

type PHY struct {
	ID            uint8  `yaml:"id"`
	LaneMap       []int  `yaml:"lane_map"`
	DataInverted  []bool `yaml:"data_inverted,omitempty"`
	ClockInverted bool   `yaml:"clock_inverted"`
}

type Pipe struct {
	DoubleBPP8  bool  `yaml:"double_bpp8"`
	DoubleBPP10 bool  `yaml:"double_bpp10"`
	DoubleBPP12 bool  `yaml:"double_bpp12"`
	SoftBPP     uint8 `yaml:"soft_bpp"`
	StreamID    uint8 `yaml:"stream_id"`
}

type Stream struct {
	VC       uint8 `yaml:"vc"`
	DataType uint8 `yaml:"data_type"`
	Enabled  bool  `yaml:"enabled"`
}

// Parse decodes and validates data. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	return Load(bytes.NewReader(data))
}

// Load decodes and validates a YAML document from r.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "parse yaml", Err: err}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names and types, then every device's driver config.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Devices))
	for _, d := range f.Devices {
		if d.Name == "" {
			return errcode.Invalid("config", "device without a name")
		}
		if seen[d.Name] {
			return errcode.Invalid("config", "duplicate device "+d.Name)
		}
		seen[d.Name] = true
		if _, err := d.Driver(); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the device called name.
func (f *File) Lookup(name string) (Device, bool) {
	for _, d := range f.Devices {
		if d.Name == name {
			return d, true
		}
	}
	return Device{}, false
}

// Driver converts d to a validated MAX96717 config.
func (d Device) Driver() (max96717.Config, error) {
	if d.Type != TypeMAX96717 {
		return max96717.Config{}, errcode.Invalid("config", d.Name+": unknown type "+quote(d.Type))
	}
	cfg := max96717.DefaultConfig()
	cfg.Name = d.Name
	if d.Address != 0 {
		cfg.Address = d.Address
	}
	if d.Port != nil {
		p, err := d.Port.driver(d.Name)
		if err != nil {
			return max96717.Config{}, err
		}
		cfg.Port = &p
	}
	for _, s := range d.Streams {
		cfg.Streams = append(cfg.Streams, max96717.Stream{VC: s.VC, DataType: s.DataType, Enabled: s.Enabled})
	}
	if d.Pipe != nil {
		cfg.Pipe = &max96717.Pipe{
			DoubleBPP8:  d.Pipe.DoubleBPP8,
			DoubleBPP10: d.Pipe.DoubleBPP10,
			DoubleBPP12: d.Pipe.DoubleBPP12,
			SoftBPP:     d.Pipe.SoftBPP,
			StreamID:    d.Pipe.StreamID,
		}
	}
	if err := cfg.Validate(); err != nil {
		return max96717.Config{}, err
	}
	return cfg, nil
}

func (p Port) driver(dev string) (max96717.CSIPort, error) {
	out := max96717.CSIPort{Lanes: p.Lanes, TunnelMode: p.TunnelMode}
	for _, ph := range p.PHYs {
		if len(ph.LaneMap) != 2 {
			return max96717.CSIPort{}, errcode.Invalid("config", dev+": lane_map needs two entries")
		}
		if len(ph.DataInverted) > 2 {
			return max96717.CSIPort{}, errcode.Invalid("config", dev+": data_inverted has more than two entries")
		}
		x := max96717.PHY{ID: ph.ID, ClockInverted: ph.ClockInverted}
		for i, l := range ph.LaneMap {
			if !mathx.Between(l, 0, 3) {
				return max96717.CSIPort{}, errcode.Invalid("config", dev+": lane_map entry out of range")
			}
			x.LaneMap[i] = uint8(l)
		}
		copy(x.DataInverted[:], ph.DataInverted)
		out.PHYs = append(out.PHYs, x)
	}
	return out, nil
}

// Open creates the handle for d on bus and applies its bring-up config.
func (d Device) Open(bus drivers.I2C, log *slog.Logger) (*gmsl.Device, error) {
	cfg, err := d.Driver()
	if err != nil {
		return nil, err
	}
	cfg.Logger = log
	dev, err := max96717.New(bus, cfg)
	if err != nil {
		return nil, err
	}
	if err := max96717.Bringup(dev, cfg); err != nil {
		_ = max96717.Remove(dev)
		return nil, err
	}
	return dev, nil
}

func quote(s string) string { return `"` + s + `"` }
