// Package smi implements the indirect register access protocol of Motorcomm
// YT921x switches. The chip exposes a 32-bit register space behind a single
// MDIO device address: every 32-bit access is split into an address phase and
// a data phase, each made of two 16-bit MDIO transactions. The MDIO register
// number selects the phase, the direction and which of up to four chips
// sharing the device address is being talked to.
package smi

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/internal"
	"github.com/soypat/ytsw/phy"
)

// Phase selects whether a transaction carries half of the register address
// or half of the register value.
type Phase uint8

const (
	PhaseAddr Phase = 0
	PhaseData Phase = 1
)

// Dir is the direction of the register access being performed.
type Dir uint8

const (
	DirWrite Dir = 0
	DirRead  Dir = 1
)

// MaxSwitchID is the largest switch id encodable in the register field.
const MaxSwitchID = 3

// RegField returns the MDIO register number used for a transaction: bits
// [3:2] hold the switch id, bit 1 the phase and bit 0 the direction.
func RegField(switchID uint8, phase Phase, dir Dir) uint16 {
	return uint16(switchID&MaxSwitchID)<<2 | uint16(phase&1)<<1 | uint16(dir&1)
}

// Transport performs 32-bit register accesses on one switch chip.
// A Transport is safe for concurrent use: each access holds the bus lock of
// the underlying [phy.SharedBus] for its four transactions.
type Transport struct {
	bus      *phy.SharedBus
	addr     uint8
	switchID uint8
	log      *slog.Logger
}

// NewTransport returns a transport for the chip at MDIO device address addr
// with the given switch id. logger may be nil.
func NewTransport(bus *phy.SharedBus, addr, switchID uint8, logger *slog.Logger) (*Transport, error) {
	if bus == nil {
		return nil, errors.New("nil shared bus")
	} else if addr > 31 {
		return nil, fmt.Errorf("smi device address %d: %w", addr, ytsw.ErrAddrOutOfRange)
	} else if switchID > MaxSwitchID {
		return nil, fmt.Errorf("smi switch id %d: %w", switchID, ytsw.ErrInvalidArgument)
	}
	return &Transport{bus: bus, addr: addr, switchID: switchID, log: logger}, nil
}

// Addr returns the MDIO device address of the chip.
func (t *Transport) Addr() uint8 { return t.addr }

// SwitchID returns the switch id folded into every transaction.
func (t *Transport) SwitchID() uint8 { return t.switchID }

// Read reads the 32-bit register at reg.
func (t *Transport) Read(reg uint32) (uint32, error) {
	var val uint32
	err := t.bus.Exclusive(func(bus phy.MDIOBus) (err error) {
		val, err = t.access(bus, DirRead, reg, 0)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("smi read %#x: %w", reg, err)
	}
	return val, nil
}

// Write writes val to the 32-bit register at reg.
func (t *Transport) Write(reg, val uint32) error {
	err := t.bus.Exclusive(func(bus phy.MDIOBus) error {
		_, err := t.access(bus, DirWrite, reg, val)
		return err
	})
	if err != nil {
		return fmt.Errorf("smi write %#x: %w", reg, err)
	}
	return nil
}

// ReadModifyWrite clears the bits of mask in reg and sets those of val.
// The bus lock is released between the read and the write so callers that
// need the update to be atomic with respect to other users of the same chip
// must serialize themselves.
func (t *Transport) ReadModifyWrite(reg, mask, val uint32) error {
	v, err := t.Read(reg)
	if err != nil {
		return err
	}
	return t.Write(reg, v&^mask|val)
}

// access performs the four transaction sequence of a single register access.
// bus must be held exclusively by the caller.
func (t *Transport) access(bus phy.MDIOBus, dir Dir, reg, val uint32) (uint32, error) {
	addrField := RegField(t.switchID, PhaseAddr, dir)
	err := bus.Write(t.addr, addrField, uint16(reg>>16))
	if err != nil {
		return 0, err
	}
	err = bus.Write(t.addr, addrField, uint16(reg))
	if err != nil {
		return 0, err
	}
	dataField := RegField(t.switchID, PhaseData, dir)
	if dir == DirWrite {
		err = bus.Write(t.addr, dataField, uint16(val>>16))
		if err != nil {
			return 0, err
		}
		err = bus.Write(t.addr, dataField, uint16(val))
		if err != nil {
			return 0, err
		}
		t.trace("smi:write", reg, val)
		return val, nil
	}
	hi, err := bus.Read(t.addr, dataField)
	if err != nil {
		return 0, err
	}
	lo, err := bus.Read(t.addr, dataField)
	if err != nil {
		return 0, err
	}
	val = uint32(hi)<<16 | uint32(lo)
	t.trace("smi:read", reg, val)
	return val, nil
}

func (t *Transport) trace(msg string, reg, val uint32) {
	if internal.LogEnabled(t.log, internal.LevelTrace) {
		internal.LogAttrs(t.log, internal.LevelTrace, msg,
			internal.SlogHex32("reg", reg),
			internal.SlogHex32("val", val),
			slog.Uint64("id", uint64(t.switchID)),
		)
	}
}
