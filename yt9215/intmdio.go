package yt9215

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/internal"
	"github.com/soypat/ytsw/phy"
)

const (
	intPollInterval = time.Millisecond
	intTimeout      = 100 * time.Millisecond
	// intPHYMask has a bit set for every internal MDIO address with a PHY.
	intPHYMask = 0xff
)

var _ phy.MDIOBus = (*IntMDIO)(nil) // compile time guarantee of interface implementation.

// IntMDIO is the internal MDIO bus of the switch, tunneled through the
// switch register space. Each transaction waits for the MDIO engine to be
// idle, issues the command and waits for it to complete.
//
// Transactions hold the switch lock so they never interleave with other
// operations on the same switch. An IntMDIO is obtained from
// [Switch.IntMDIO]; the zero value fails every transaction with
// [ytsw.ErrClosed].
type IntMDIO struct {
	sw *Switch
}

// PHYMask returns the mask of addresses with a PHY attached, suitable for
// [phy.FindClause22PHYs]. Only the integrated PHYs at addresses 0-7 are reachable.
func (m *IntMDIO) PHYMask() uint32 { return intPHYMask }

// Read reads register regAddr of the PHY at phyAddr.
func (m *IntMDIO) Read(phyAddr uint8, regAddr uint16) (uint16, error) {
	if err := m.checkAddrs(phyAddr, regAddr); err != nil {
		return 0xffff, err
	}
	if err := m.lock(); err != nil {
		return 0xffff, err
	}
	defer m.sw.mu.Unlock()
	v, err := m.transaction(intOpRead, phyAddr, regAddr, 0)
	if err != nil {
		return 0xffff, fmt.Errorf("intmdio read phy %d reg %d: %w", phyAddr, regAddr, err)
	}
	return v, nil
}

// Write writes value to register regAddr of the PHY at phyAddr.
func (m *IntMDIO) Write(phyAddr uint8, regAddr, value uint16) error {
	if err := m.checkAddrs(phyAddr, regAddr); err != nil {
		return err
	}
	if err := m.lock(); err != nil {
		return err
	}
	defer m.sw.mu.Unlock()
	_, err := m.transaction(intOpWrite, phyAddr, regAddr, value)
	if err != nil {
		return fmt.Errorf("intmdio write phy %d reg %d: %w", phyAddr, regAddr, err)
	}
	return nil
}

func (m *IntMDIO) lock() error {
	if m.sw == nil {
		return ytsw.ErrClosed
	}
	return m.sw.lock()
}

func (m *IntMDIO) checkAddrs(phyAddr uint8, regAddr uint16) error {
	if phyAddr >= 32 || intPHYMask&(1<<phyAddr) == 0 {
		return fmt.Errorf("intmdio phy address %d: %w", phyAddr, ytsw.ErrAddrOutOfRange)
	} else if regAddr > 31 {
		return fmt.Errorf("intmdio register %d: %w", regAddr, ytsw.ErrInvalidArgument)
	}
	return nil
}

// transaction runs one MDIO command with the switch lock held.
func (m *IntMDIO) transaction(op uint32, phyAddr uint8, regAddr, value uint16) (uint16, error) {
	sw := m.sw
	err := m.wait()
	if err != nil {
		return 0, err
	}
	ctrl := op | uint32(phyAddr)<<intAddrShift | uint32(regAddr)<<intRegShift
	err = sw.rmw(regIntCtrl, intOpMask|intAddrMask|intRegMask, ctrl)
	if err != nil {
		return 0, err
	}
	if op == intOpWrite {
		err = sw.write(regIntWData, uint32(value))
		if err != nil {
			return 0, err
		}
	}
	err = sw.write(regIntOP, intOpDo)
	if err != nil {
		return 0, err
	}
	err = m.wait()
	if err != nil {
		return 0, err
	}
	if op == intOpWrite {
		sw.debug("intmdio:write", slog.Uint64("phy", uint64(phyAddr)), slog.Uint64("reg", uint64(regAddr)), slog.Uint64("val", uint64(value)))
		return value, nil
	}
	v, err := sw.read(regIntRData)
	if err != nil {
		return 0, err
	}
	value = uint16(v & intDataMask16)
	sw.debug("intmdio:read", slog.Uint64("phy", uint64(phyAddr)), slog.Uint64("reg", uint64(regAddr)), slog.Uint64("val", uint64(value)))
	return value, nil
}

func (m *IntMDIO) wait() error {
	_, err := internal.PollTimeout(func() (uint32, error) {
		return m.sw.read(regIntOP)
	}, func(v uint32) bool { return v == intOpIdle }, intPollInterval, intTimeout)
	return err
}
