// Package mdiodev provides [phy.MDIOBus] implementations backed by real
// hardware: the MII ioctls of a Linux network interface whose MAC owns the
// MDIO bus, and a pair of GPIO lines driven as a bit-banged bus.
package mdiodev

import "github.com/soypat/ytsw/phy"

var (
	_ phy.MDIOBus = (*Ioctl)(nil)
	_ phy.MDIOBus = (*GPIO)(nil)
)
