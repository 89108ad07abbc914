// Package yt9215 drives the Motorcomm YT9215 11-port Gigabit Ethernet switch
// over its MDIO management interface. A [Switch] brings the chip up from
// board configuration and exposes the VLAN, PVID, link and MIB counter
// controls. PHYs wired to the switch ports are reached through [IntMDIO],
// the tunneled internal MDIO bus.
package yt9215

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/internal"
	"github.com/soypat/ytsw/phy"
	"github.com/soypat/ytsw/smi"
)

const (
	// NumPorts is the number of switch ports, CPU port included.
	NumPorts = 11
	// NumVLANs is the size of the VLAN table.
	NumVLANs = 4096
	// DefaultCPUPort is the port wired to the host SoC on reference boards.
	DefaultCPUPort = 8
	// serialPort is the only port that can be routed to the SerDes interface.
	serialPort = 8
)

// Config holds the parameters needed to attach to a switch chip.
type Config struct {
	// Bus is the MDIO bus the chip is wired to. Drivers of every other
	// device on the same wires must share the same SharedBus.
	Bus *phy.SharedBus
	// Addr is the MDIO device address the chip answers to.
	Addr uint8
	// SwitchID distinguishes up to four chips strapped to the same Addr.
	SwitchID uint8
	// CPUPort is the port index wired to the host. Zero selects DefaultCPUPort.
	CPUPort int
	// Ports lists the board port configuration applied by Configure.
	Ports []ytsw.PortConfig
	// Logger receives driver diagnostics. May be nil.
	Logger *slog.Logger
}

// Switch is a YT9215 switch chip. All methods are safe for concurrent use;
// operations on one Switch are serialized and never interleave.
type Switch struct {
	// mu is always acquired before the bus lock.
	mu      sync.Mutex
	smi     *smi.Transport
	log     *slog.Logger
	ports   []ytsw.PortConfig
	cpuPort int
	chipID  uint32
	closed  bool
	intmdio IntMDIO
}

// New attaches to the switch described by cfg and reads its chip identifier.
// An unexpected identifier is logged as a warning and does not fail New.
// The chip is not reset or programmed until Configure is called.
func New(cfg Config) (*Switch, error) {
	if cfg.CPUPort == 0 {
		cfg.CPUPort = DefaultCPUPort
	}
	if cfg.CPUPort < 0 || cfg.CPUPort >= NumPorts {
		return nil, fmt.Errorf("cpu port %d: %w", cfg.CPUPort, ytsw.ErrInvalidArgument)
	}
	tp, err := smi.NewTransport(cfg.Bus, cfg.Addr, cfg.SwitchID, cfg.Logger)
	if err != nil {
		return nil, err
	}
	sw := &Switch{
		smi:     tp,
		log:     cfg.Logger,
		ports:   append([]ytsw.PortConfig(nil), cfg.Ports...),
		cpuPort: cfg.CPUPort,
	}
	sw.intmdio.sw = sw
	sw.chipID, err = tp.Read(regChipID)
	if err != nil {
		return nil, fmt.Errorf("reading chip id: %w", err)
	}
	if sw.chipID&chipIDMask != chipIDYT9215 {
		sw.warn("yt9215:chipid-mismatch", internal.SlogHex32("chipid", sw.chipID))
	} else {
		sw.info("yt9215:detected", internal.SlogHex32("chipid", sw.chipID),
			slog.Uint64("addr", uint64(cfg.Addr)), slog.Uint64("id", uint64(cfg.SwitchID)))
	}
	return sw, nil
}

// ChipID returns the identifier read from the chip by New.
func (sw *Switch) ChipID() uint32 { return sw.chipID }

// CPUPort returns the index of the port wired to the host.
func (sw *Switch) CPUPort() int { return sw.cpuPort }

// Ports returns a copy of the board port configuration.
func (sw *Switch) Ports() []ytsw.PortConfig {
	return append([]ytsw.PortConfig(nil), sw.ports...)
}

// Transport returns the register transport of the chip. Accesses made
// through it are not serialized with the Switch operations.
func (sw *Switch) Transport() *smi.Transport { return sw.smi }

// IntMDIO returns the internal MDIO bus of the switch, through which the
// PHYs of the switch ports are managed.
func (sw *Switch) IntMDIO() *IntMDIO { return &sw.intmdio }

// Close waits for in-flight operations to finish and makes every later
// operation fail with [ytsw.ErrClosed]. The underlying bus is left open.
func (sw *Switch) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		return ytsw.ErrClosed
	}
	sw.closed = true
	return nil
}

// lock acquires the switch lock. It fails if the switch has been closed, in
// which case the lock is not held on return.
func (sw *Switch) lock() error {
	sw.mu.Lock()
	if sw.closed {
		sw.mu.Unlock()
		return ytsw.ErrClosed
	}
	return nil
}

func (sw *Switch) read(reg uint32) (uint32, error) { return sw.smi.Read(reg) }

func (sw *Switch) write(reg, val uint32) error { return sw.smi.Write(reg, val) }

func (sw *Switch) rmw(reg, mask, val uint32) error { return sw.smi.ReadModifyWrite(reg, mask, val) }

// writes performs a batch of register writes, stopping at the first error.
func (sw *Switch) writes(regvals ...uint32) error {
	if len(regvals)%2 != 0 {
		panic("odd register/value list")
	}
	for i := 0; i < len(regvals); i += 2 {
		err := sw.write(regvals[i], regvals[i+1])
		if err != nil {
			return err
		}
	}
	return nil
}

func checkPort(port int) error {
	if port < 0 || port >= NumPorts {
		return fmt.Errorf("port %d: %w", port, ytsw.ErrInvalidArgument)
	}
	return nil
}

func checkVID(vid int) error {
	if vid < 0 || vid >= NumVLANs {
		return fmt.Errorf("vlan id %d: %w", vid, ytsw.ErrInvalidArgument)
	}
	return nil
}

func (sw *Switch) debug(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(sw.log, slog.LevelDebug, msg, attrs...)
}

func (sw *Switch) info(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(sw.log, slog.LevelInfo, msg, attrs...)
}

func (sw *Switch) warn(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(sw.log, slog.LevelWarn, msg, attrs...)
}
