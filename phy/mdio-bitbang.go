package phy

import (
	"errors"
	"fmt"

	"github.com/soypat/ytsw"
)

var _ MDIOBus = (*MDIOBitBang)(nil) // compile time guarantee of interface implementation.

const (
	mdioRead  = 0b10
	mdioWrite = 0b01
)

var errTurnaround = errors.New("PHY did not drive turnaround low")

// MDIOBitBang is a software defined (bitbang) Clause 22 MDIO management
// interface. It acts as the station management entity and clocks frames out
// over two GPIO lines: MDC (clock) and MDIO (bidirectional data).
// Inspired by linux/drivers/net/phy/mdio-bitbang.c
//
// The callbacks passed to Configure implement the pin level operations:
// sendBit drives MDIO then pulses MDC, getBit pulses MDC then samples MDIO and
// setDir switches MDIO between output and input. MDC must be held low between
// calls. See package mdiodev for a GPIO implementation.
type MDIOBitBang struct {
	_sendBit func(bit bool)
	_getBit  func() (inputBit bool)
	_setDir  func(output bool)
}

// Configure initializes the MDIO bit-bang interface with the given pin control callbacks.
func (m *MDIOBitBang) Configure(sendBit func(bit bool), getBit func() bool, setDir func(setOut bool)) {
	if sendBit == nil || getBit == nil || setDir == nil {
		panic("nil callback")
	}
	m._getBit = getBit
	m._sendBit = sendBit
	m._setDir = setDir
	// Setting direction to output releases the bus.
	m.setDir(true)
}

// Read reads a register of the PHY at phyAddr.
func (m *MDIOBitBang) Read(phyAddr uint8, regAddr uint16) (uint16, error) {
	if err := checkAddrs(phyAddr, regAddr); err != nil {
		return 0xffff, err
	}
	m.cmd(mdioRead, phyAddr, uint8(regAddr))
	m.setDir(false)
	// PHY drives second turnaround bit to zero.
	if m.getBit() {
		// Flush whatever the PHY is clocking out.
		for i := 0; i < 32; i++ {
			m.getBit()
		}
		return 0xffff, errTurnaround
	}
	ret := m.getNum(16)
	m.getBit()
	return ret, nil
}

// Write writes value to a register of the PHY at phyAddr.
func (m *MDIOBitBang) Write(phyAddr uint8, regAddr, value uint16) error {
	if err := checkAddrs(phyAddr, regAddr); err != nil {
		return err
	}
	m.cmd(mdioWrite, phyAddr, uint8(regAddr))
	// Turnaround: 10.
	m.sendBit(true)
	m.sendBit(false)
	m.sendNum(value, 16)
	m.setDir(false)
	m.getBit()
	return nil
}

func checkAddrs(phyAddr uint8, regAddr uint16) error {
	if phyAddr > maxPHYAddr {
		return fmt.Errorf("mdio phy address %d: %w", phyAddr, ytsw.ErrAddrOutOfRange)
	} else if regAddr > maxRegAddr {
		return fmt.Errorf("mdio register %d: %w", regAddr, ytsw.ErrAddrOutOfRange)
	}
	return nil
}

func (m *MDIOBitBang) cmd(op uint8, phy, reg uint8) {
	m.setDir(true)
	// Preamble, 32 bits of 1.
	for i := 0; i < 32; i++ {
		m.sendBit(true)
	}
	// Start of frame: 01.
	m.sendBit(false)
	m.sendBit(true)
	m.sendBit((op>>1)&1 != 0)
	m.sendBit(op&1 != 0)
	m.sendNum(uint16(phy), 5)
	m.sendNum(uint16(reg), 5)
}

func (m *MDIOBitBang) sendNum(val uint16, bits int) {
	for i := bits - 1; i >= 0; i-- {
		m.sendBit((val>>i)&1 != 0)
	}
}

func (m *MDIOBitBang) getNum(bits int) (ret uint16) {
	for i := bits - 1; i >= 0; i-- {
		ret <<= 1
		if m.getBit() {
			ret |= 1
		}
	}
	return ret
}

func (m *MDIOBitBang) setDir(outWrite bool) { m._setDir(outWrite) }
func (m *MDIOBitBang) sendBit(b bool)        { m._sendBit(b) }
func (m *MDIOBitBang) getBit() bool          { return m._getBit() }
