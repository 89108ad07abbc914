package phy

import "sync"

// MDIOBus is a HAL for a Clause 22 MDIO management bus: one 16-bit register
// read or write per transaction, addressed by a 5-bit PHY address and a
// register address. Switch chips reached over MDIO reuse the register address
// as a phase and direction selector, so it is a full uint16 even though
// regular PHYs only decode registers 0-31.
//
// Implementations need not be safe for concurrent use. Wrap them in a
// [SharedBus] when more than one driver talks over the same wire.
type MDIOBus interface {
	// Read reads a 16-bit register from the device at phyAddr.
	Read(phyAddr uint8, regAddr uint16) (value uint16, err error)
	// Write writes a 16-bit value to a register of the device at phyAddr.
	Write(phyAddr uint8, regAddr, value uint16) error
}

var _ MDIOBus = (*SharedBus)(nil) // compile time guarantee of interface implementation.

// SharedBus serializes access to a physical MDIO bus. All drivers using the
// same wire must share one SharedBus so that multi-transaction sequences
// issued through [SharedBus.Exclusive] are never interleaved with other
// traffic.
type SharedBus struct {
	mu  sync.Mutex
	bus MDIOBus
}

// NewSharedBus returns a SharedBus guarding bus.
func NewSharedBus(bus MDIOBus) *SharedBus {
	if bus == nil {
		panic("nil MDIOBus")
	}
	return &SharedBus{bus: bus}
}

// Read performs a single locked read transaction.
func (sb *SharedBus) Read(phyAddr uint8, regAddr uint16) (uint16, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.bus.Read(phyAddr, regAddr)
}

// Write performs a single locked write transaction.
func (sb *SharedBus) Write(phyAddr uint8, regAddr, value uint16) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.bus.Write(phyAddr, regAddr, value)
}

// Exclusive calls fn with the bus lock held for the whole call. fn must use
// the bus it is passed and must not call back into sb, which would deadlock.
func (sb *SharedBus) Exclusive(fn func(bus MDIOBus) error) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return fn(sb.bus)
}
