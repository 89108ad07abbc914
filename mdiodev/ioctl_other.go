//go:build !linux

package mdiodev

import (
	"fmt"

	"github.com/soypat/ytsw"
)

// Ioctl is an MDIO bus reached through network interface ioctls. It is only
// available on Linux.
type Ioctl struct{}

// OpenIoctl always fails on this platform.
func OpenIoctl(iface string) (*Ioctl, error) {
	return nil, fmt.Errorf("mdio ioctl on %s: %w", iface, ytsw.ErrUnsupported)
}

func (m *Ioctl) Interface() string { return "" }

func (m *Ioctl) Read(phyAddr uint8, regAddr uint16) (uint16, error) {
	return 0xffff, ytsw.ErrUnsupported
}

func (m *Ioctl) Write(phyAddr uint8, regAddr, value uint16) error {
	return ytsw.ErrUnsupported
}

func (m *Ioctl) Close() error { return nil }
