// Package swconfig loads the YAML board description used to bring up a
// YT9215 switch: how its MDIO bus is reached, the chip strapping and the
// port topology.
//
//	log_level: info
//	bus:
//	  backend: ioctl
//	  interface: eth0
//	switch:
//	  addr: 29
//	  switch_id: 0
//	  cpu_port: 8
//	ports:
//	  - index: 8
//	    phy_mode: sgmii
//	    fixed_link: {speed: 1000, full_duplex: true}
//	vlans:
//	  - vid: 10
//	    ports: "0 1 8t"
package swconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/internal"
	"github.com/soypat/ytsw/yt9215"
)

// Bus backends.
const (
	BackendIoctl = "ioctl"
	BackendGPIO  = "gpio"
)

// Config is the board description.
type Config struct {
	LogLevel string            `yaml:"log_level"`
	Bus      BusConfig         `yaml:"bus"`
	Switch   SwitchConfig      `yaml:"switch"`
	Ports    []ytsw.PortConfig `yaml:"ports"`
	// VLANs are applied after the switch is configured, on top of the
	// default VLAN 1.
	VLANs []VLANConfig `yaml:"vlans"`
}

// BusConfig selects the MDIO bus backend.
type BusConfig struct {
	Backend string `yaml:"backend"`
	// Interface is the network interface whose MAC masters the bus (ioctl).
	Interface string `yaml:"interface"`
	// MDC and MDIO are periph pin names (gpio).
	MDC          string `yaml:"mdc"`
	MDIO         string `yaml:"mdio"`
	FrequencyKHz int    `yaml:"frequency_khz"`
}

// SwitchConfig holds the chip strapping.
type SwitchConfig struct {
	Addr     uint8 `yaml:"addr"`
	SwitchID uint8 `yaml:"switch_id"`
	CPUPort  int   `yaml:"cpu_port"`
}

// VLANConfig is a VLAN with its member ports in [yt9215.FormatVLANPorts]
// notation, optionally made the PVID of its untagged members.
type VLANConfig struct {
	VID   int    `yaml:"vid"`
	Ports string `yaml:"ports"`
	PVID  bool   `yaml:"pvid"`
}

// Default returns the configuration used for unset fields.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Bus: BusConfig{
			Backend:      BackendIoctl,
			Interface:    "eth0",
			FrequencyKHz: 2500,
		},
		Switch: SwitchConfig{
			CPUPort: yt9215.DefaultCPUPort,
		},
	}
}

// Load reads and validates the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Bus.Backend == "" {
		c.Bus.Backend = d.Bus.Backend
	}
	if c.Bus.Backend == BackendIoctl && c.Bus.Interface == "" {
		c.Bus.Interface = d.Bus.Interface
	}
	if c.Bus.FrequencyKHz == 0 {
		c.Bus.FrequencyKHz = d.Bus.FrequencyKHz
	}
	if c.Switch.CPUPort == 0 {
		c.Switch.CPUPort = d.Switch.CPUPort
	}
}

// Validate checks the configuration for values the driver would reject or
// silently ignore.
func (c *Config) Validate() error {
	var errs []error
	switch c.Bus.Backend {
	case BackendIoctl:
		if c.Bus.Interface == "" {
			errs = append(errs, errors.New("bus: ioctl backend requires interface"))
		}
	case BackendGPIO:
		if c.Bus.MDC == "" || c.Bus.MDIO == "" {
			errs = append(errs, errors.New("bus: gpio backend requires mdc and mdio pins"))
		}
		if c.Bus.FrequencyKHz < 0 || c.Bus.FrequencyKHz > 2500 {
			errs = append(errs, fmt.Errorf("bus: frequency_khz %d out of range 1..2500", c.Bus.FrequencyKHz))
		}
	default:
		errs = append(errs, fmt.Errorf("bus: unknown backend %q", c.Bus.Backend))
	}
	if c.Switch.Addr > 31 {
		errs = append(errs, fmt.Errorf("switch: addr %d out of range 0..31", c.Switch.Addr))
	}
	if c.Switch.SwitchID > 3 {
		errs = append(errs, fmt.Errorf("switch: switch_id %d out of range 0..3", c.Switch.SwitchID))
	}
	if c.Switch.CPUPort < 0 || c.Switch.CPUPort >= yt9215.NumPorts {
		errs = append(errs, fmt.Errorf("switch: cpu_port %d out of range", c.Switch.CPUPort))
	}
	var seen [yt9215.NumPorts]bool
	for i, p := range c.Ports {
		if p.Index < 0 || p.Index >= yt9215.NumPorts {
			errs = append(errs, fmt.Errorf("ports[%d]: index %d out of range 0..%d", i, p.Index, yt9215.NumPorts-1))
			continue
		} else if seen[p.Index] {
			errs = append(errs, fmt.Errorf("ports[%d]: duplicate index %d", i, p.Index))
		}
		seen[p.Index] = true
		if p.Mode == ytsw.ModeOther {
			errs = append(errs, fmt.Errorf("ports[%d]: unsupported phy_mode", i))
		}
		if fl := p.FixedLink; fl != nil && fl.Speed != 0 && ytsw.SpeedFromMbps(fl.Speed) == ytsw.SpeedUnknown {
			errs = append(errs, fmt.Errorf("ports[%d]: fixed_link speed %d not one of 10, 100, 1000, 2500", i, fl.Speed))
		}
	}
	for i, v := range c.VLANs {
		if v.VID < 0 || v.VID >= yt9215.NumVLANs {
			errs = append(errs, fmt.Errorf("vlans[%d]: vid %d out of range", i, v.VID))
		}
		if _, err := yt9215.ParseVLANPorts(v.Ports); err != nil {
			errs = append(errs, fmt.Errorf("vlans[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// SlogLevel returns the logging level named by LogLevel. "trace" enables
// logging of every register access.
func (c *Config) SlogLevel() (slog.Level, error) {
	if strings.EqualFold(c.LogLevel, "trace") {
		return internal.LevelTrace, nil
	}
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}

// SwitchDriverConfig returns the driver configuration of the switch. The
// bus and logger are left for the caller to fill in.
func (c *Config) SwitchDriverConfig() yt9215.Config {
	return yt9215.Config{
		Addr:     c.Switch.Addr,
		SwitchID: c.Switch.SwitchID,
		CPUPort:  c.Switch.CPUPort,
		Ports:    c.Ports,
	}
}

// ApplyVLANs programs the configured VLANs and PVIDs into sw.
func (c *Config) ApplyVLANs(sw *yt9215.Switch) error {
	for _, v := range c.VLANs {
		ports, err := yt9215.ParseVLANPorts(v.Ports)
		if err != nil {
			return err
		}
		err = sw.SetVLAN(v.VID, ports)
		if err != nil {
			return err
		}
		if !v.PVID {
			continue
		}
		for _, p := range ports {
			if p.Tagged {
				continue
			}
			err = sw.SetPVID(p.Port, v.VID)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
