// Package chipsim simulates a YT9215 as seen from its MDIO management
// interface. It decodes the phase tagged register protocol, keeps a register
// file, emulates the self clearing reset, MIB clearing and the internal MDIO
// engine with attached PHYs, and records every completed register access so
// tests can assert on exact register traffic.
package chipsim

import (
	"sort"
	"sync"

	"github.com/soypat/ytsw/phy"
)

// Registers with side effects on write.
const (
	RegResetCtrl = 0x80000
	RegChipID    = 0x80008
	RegMIBCtrl   = 0xc0004
	RegIntOP     = 0xf0000
	RegIntCtrl   = 0xf0004
	RegIntWData  = 0xf0008
	RegIntRData  = 0xf000c

	mibBase      = 0xc0100
	mibEnd       = mibBase + 0x100*11
	mibClean     = 1 << 30
	mibSelSingle = 2
	resetHW      = 1 << 31
	intOpRead    = 2
	intOpWr      = 1

	// DefaultChipID is a YT9215 identifier with revision bits set.
	DefaultChipID = 0x90020001
)

var _ phy.MDIOBus = (*Chip)(nil)

// Access is a completed 32-bit register access.
type Access struct {
	Write bool
	Reg   uint32
	Val   uint32
}

// Chip is a simulated switch at one MDIO device address and switch id.
// Its methods are safe for concurrent use.
type Chip struct {
	mu       sync.Mutex
	addr     uint8
	switchID uint8
	regs     map[uint32]uint32
	phys     [32]*[32]uint16
	log      []Access
	// Number of raw MDIO transactions addressed to this chip.
	ntx int

	// Protocol decoding state. addrDir is the direction declared by the
	// address phase; data phases of the other direction are rejected.
	addrHalves int
	addrHi     uint16
	addrHiDir  uint16
	addrValid  bool
	addrDir    uint16
	reg        uint32
	dataHalves int
	dataHi     uint16
	rdata      uint32

	rejected   int
	resetStuck bool
	intBusy    bool
	failAfter  int
	failErr    error
}

// New returns a chip that answers at MDIO address addr with switch id
// switchID, holding [DefaultChipID] in its identification register.
func New(addr, switchID uint8) *Chip {
	c := &Chip{addr: addr, switchID: switchID & 3}
	c.powerOn()
	return c
}

func (c *Chip) powerOn() {
	c.regs = map[uint32]uint32{RegChipID: DefaultChipID}
}

// Read implements [phy.MDIOBus].
func (c *Chip) Read(phyAddr uint8, regAddr uint16) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.selected(phyAddr, regAddr) {
		return 0xffff, nil
	}
	if err := c.transaction(); err != nil {
		return 0xffff, err
	}
	if regAddr&0b10 == 0 {
		// Address phase is write only.
		return 0xffff, nil
	}
	c.addrHalves = 0
	if !c.addrValid || c.addrDir != 1 {
		c.reject()
		return 0xffff, nil
	}
	if c.dataHalves == 0 {
		c.rdata = c.readReg(c.reg)
		c.dataHalves = 1
		return uint16(c.rdata >> 16), nil
	}
	c.dataHalves = 0
	c.addrValid = false
	c.log = append(c.log, Access{Reg: c.reg, Val: c.rdata})
	return uint16(c.rdata), nil
}

// Write implements [phy.MDIOBus].
func (c *Chip) Write(phyAddr uint8, regAddr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.selected(phyAddr, regAddr) {
		return nil
	}
	if err := c.transaction(); err != nil {
		return err
	}
	dir := regAddr & 1
	if regAddr&0b10 == 0 {
		c.dataHalves = 0
		c.addrValid = false
		if c.addrHalves == 0 {
			c.addrHi = value
			c.addrHiDir = dir
			c.addrHalves = 1
		} else if dir != c.addrHiDir {
			c.addrHalves = 0
			c.reject()
		} else {
			c.reg = uint32(c.addrHi)<<16 | uint32(value)
			c.addrDir = dir
			c.addrValid = true
			c.addrHalves = 0
		}
		return nil
	}
	c.addrHalves = 0
	if dir != 0 {
		// Write on the read data field is ignored by hardware.
		c.reject()
		return nil
	}
	if !c.addrValid || c.addrDir != 0 {
		c.reject()
		return nil
	}
	if c.dataHalves == 0 {
		c.dataHi = value
		c.dataHalves = 1
		return nil
	}
	c.dataHalves = 0
	c.addrValid = false
	val := uint32(c.dataHi)<<16 | uint32(value)
	c.log = append(c.log, Access{Write: true, Reg: c.reg, Val: val})
	c.writeReg(c.reg, val)
	return nil
}

func (c *Chip) selected(phyAddr uint8, regAddr uint16) bool {
	return phyAddr == c.addr && uint8(regAddr>>2)&3 == c.switchID && regAddr < 16
}

func (c *Chip) transaction() error {
	c.ntx++
	if c.failErr != nil {
		if c.failAfter == 0 {
			// Aborted frame, decoding restarts at the next address phase.
			c.addrHalves, c.dataHalves = 0, 0
			c.addrValid = false
			return c.failErr
		}
		c.failAfter--
	}
	return nil
}

// reject drops a transaction that does not follow the declared access.
func (c *Chip) reject() {
	c.dataHalves = 0
	c.addrValid = false
	c.rejected++
}

func (c *Chip) readReg(reg uint32) uint32 {
	return c.regs[reg]
}

func (c *Chip) writeReg(reg, val uint32) {
	switch reg {
	case RegChipID:
		return // Read only.
	case RegResetCtrl:
		if val&resetHW != 0 && !c.resetStuck {
			c.powerOn()
			return
		}
	case RegMIBCtrl:
		if val&mibClean != 0 {
			lo, hi := uint32(mibBase), uint32(mibEnd)
			if val&3 == mibSelSingle {
				lo += 0x100 * (val >> 3 & 0xf)
				hi = lo + 0x100
			}
			for r := range c.regs {
				if r >= lo && r < hi {
					delete(c.regs, r)
				}
			}
			val &^= mibClean
		}
	case RegIntOP:
		if val&1 != 0 && !c.intBusy {
			c.intExecute()
			val = 0
		}
	}
	c.regs[reg] = val
}

func (c *Chip) intExecute() {
	ctrl := c.regs[RegIntCtrl]
	op := (ctrl >> 2) & 3
	addr := (ctrl >> 21) & 0x1f
	reg := (ctrl >> 16) & 0x1f
	file := c.phys[addr]
	switch op {
	case intOpRead:
		var v uint32 = 0xffff
		if file != nil {
			v = uint32(file[reg])
		}
		c.regs[RegIntRData] = v
	case intOpWr:
		if file != nil {
			v := uint16(c.regs[RegIntWData])
			if reg == 0 {
				v &^= 0x8000 // BMCR reset self-clears.
			}
			file[reg] = v
		}
	}
}

// AttachPHY connects a PHY with a zeroed register file at internal MDIO
// address addr and returns its register file. Accesses to the file must not
// race with chip accesses.
func (c *Chip) AttachPHY(addr uint8) *[32]uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	file := new([32]uint16)
	c.phys[addr&31] = file
	return file
}

// SetIntMDIOBusy makes the internal MDIO engine report a busy status and
// ignore execute commands until called with false.
func (c *Chip) SetIntMDIOBusy(busy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intBusy = busy
	if busy {
		c.regs[RegIntOP] = 1
	} else {
		c.regs[RegIntOP] = 0
	}
}

// SetResetStuck makes hardware reset requests latch without taking effect.
func (c *Chip) SetResetStuck(stuck bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetStuck = stuck
}

// FailAfter makes every MDIO transaction after the next n return err.
// A nil err disables fault injection.
func (c *Chip) FailAfter(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAfter = n
	c.failErr = err
}

// Reg returns the value held in reg without recording an access.
func (c *Chip) Reg(reg uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[reg]
}

// SetReg stores val in reg bypassing write side effects and the access log.
func (c *Chip) SetReg(reg, val uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regs[reg] = val
}

// Regs returns the addresses of all registers holding a value, sorted.
func (c *Chip) Regs() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	regs := make([]uint32, 0, len(c.regs))
	for r := range c.regs {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })
	return regs
}

// Accesses returns a copy of the recorded register accesses.
func (c *Chip) Accesses() []Access {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Access(nil), c.log...)
}

// Writes returns how many times reg was written.
func (c *Chip) Writes(reg uint32) (n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.log {
		if a.Write && a.Reg == reg {
			n++
		}
	}
	return n
}

// Transactions returns the number of raw MDIO transactions addressed to the chip.
func (c *Chip) Transactions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ntx
}

// Rejected returns the number of transactions dropped for not matching the
// direction declared by the address phase.
func (c *Chip) Rejected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejected
}

// ClearLog drops the recorded accesses and resets the transaction and
// rejection counters.
func (c *Chip) ClearLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = c.log[:0]
	c.ntx = 0
	c.rejected = 0
}

// Board is a set of chips wired to the same MDIO lines. Chips sharing a
// device address are told apart by switch id.
type Board []*Chip

var _ phy.MDIOBus = Board(nil)

// Read implements [phy.MDIOBus]. Unselected chips leave the line pulled up.
func (b Board) Read(phyAddr uint8, regAddr uint16) (uint16, error) {
	for _, c := range b {
		if c.selectedLocked(phyAddr, regAddr) {
			return c.Read(phyAddr, regAddr)
		}
	}
	return 0xffff, nil
}

// Write implements [phy.MDIOBus].
func (b Board) Write(phyAddr uint8, regAddr, value uint16) error {
	for _, c := range b {
		if err := c.Write(phyAddr, regAddr, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chip) selectedLocked(phyAddr uint8, regAddr uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected(phyAddr, regAddr)
}
