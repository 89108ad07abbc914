// Package ytsw holds the definitions shared by the YT9215 switch driver
// packages: link speeds, port interface modes, port configuration and the
// errors returned by the register transport, the tunneled MDIO bus and the
// switch control plane.
package ytsw

//go:generate stringer -type=Speed,InterfaceMode,errGeneric -linecomment -output stringers.go .

// Speed is the link speed of a switch port as programmed into or decoded from
// the port control and status registers.
type Speed uint8

const (
	SpeedUnknown Speed = iota // unknown
	Speed10                   // 10M
	Speed100                  // 100M
	Speed1000                 // 1000M
	Speed2500                 // 2500M
)

// Mbps returns the speed in megabits per second or 0 for [SpeedUnknown].
func (s Speed) Mbps() int {
	switch s {
	case Speed10:
		return 10
	case Speed100:
		return 100
	case Speed1000:
		return 1000
	case Speed2500:
		return 2500
	default:
		return 0
	}
}

// SpeedFromMbps returns the Speed matching mbps. Speeds the switch MAC
// cannot be forced to return [SpeedUnknown].
func SpeedFromMbps(mbps int) Speed {
	switch mbps {
	case 10:
		return Speed10
	case 100:
		return Speed100
	case 1000:
		return Speed1000
	case 2500:
		return Speed2500
	default:
		return SpeedUnknown
	}
}

// InterfaceMode is the MAC to PHY interface of a port, named after the
// device tree phy-mode strings.
type InterfaceMode uint8

const (
	ModeNA        InterfaceMode = iota // na
	ModeInternal                       // internal
	ModeSGMII                          // sgmii
	Mode2500BaseX                      // 2500base-x
	ModeRGMII                          // rgmii
	ModeRGMIIID                        // rgmii-id
	ModeRGMIIRXID                      // rgmii-rxid
	ModeRGMIITXID                      // rgmii-txid
	ModeOther                          // other
)

// IsSerial returns true for the SerDes modes routed through the serial uplink.
func (m InterfaceMode) IsSerial() bool { return m == ModeSGMII || m == Mode2500BaseX }

// IsRGMII returns true for RGMII and its internal delay variants.
func (m InterfaceMode) IsRGMII() bool { return m >= ModeRGMII && m <= ModeRGMIITXID }

// ParseInterfaceMode parses a phy-mode string. An empty string yields [ModeNA].
// Well formed modes this chip has no use for yield [ModeOther].
func ParseInterfaceMode(s string) InterfaceMode {
	if s == "" {
		return ModeNA
	}
	for m := ModeNA; m < ModeOther; m++ {
		if m.String() == s {
			return m
		}
	}
	return ModeOther
}

// MarshalText implements [encoding.TextMarshaler].
func (m InterfaceMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *InterfaceMode) UnmarshalText(text []byte) error {
	*m = ParseInterfaceMode(string(text))
	return nil
}

// FixedLink forces the link parameters of a port instead of letting the MAC
// follow auto-negotiation.
type FixedLink struct {
	// Speed in Mbps. Zero or an unsupported value leaves the speed field unset.
	Speed      int  `yaml:"speed"`
	FullDuplex bool `yaml:"full_duplex"`
	Pause      bool `yaml:"pause"`
	AsymPause  bool `yaml:"asym_pause"`
}

// PortConfig describes one port as provided by the board configuration.
type PortConfig struct {
	Index int           `yaml:"index"`
	Mode  InterfaceMode `yaml:"phy_mode"`
	// FixedLink is nil for ports that auto-negotiate.
	FixedLink *FixedLink `yaml:"fixed_link"`
}
