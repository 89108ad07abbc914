//go:build linux

package mdiodev

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/soypat/ytsw"
)

// ifreqMII is struct ifreq with the struct mii_ioctl_data union member.
type ifreqMII struct {
	name   [unix.IFNAMSIZ]byte
	phyID  uint16
	regNum uint16
	valIn  uint16
	valOut uint16
	_      [16]byte // Pad union to sizeof(struct ifmap).
}

// Ioctl is an MDIO bus reached through the SIOCGMIIREG and SIOCSMIIREG
// ioctls of a network interface. The kernel driver of the interface must
// implement the MII ioctls, as most Ethernet MAC drivers with an attached
// MDIO bus do. Requires CAP_NET_ADMIN.
//
// Ioctl is not safe for concurrent use, wrap it in a [phy.SharedBus].
type Ioctl struct {
	fd    int
	iface string
}

// OpenIoctl opens the MDIO bus of network interface iface, for example "eth0".
func OpenIoctl(iface string) (*Ioctl, error) {
	if len(iface) >= unix.IFNAMSIZ || iface == "" {
		return nil, fmt.Errorf("interface name %q: %w", iface, ytsw.ErrInvalidArgument)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	return &Ioctl{fd: fd, iface: iface}, nil
}

// Interface returns the name of the network interface owning the bus.
func (m *Ioctl) Interface() string { return m.iface }

// Read implements [phy.MDIOBus].
func (m *Ioctl) Read(phyAddr uint8, regAddr uint16) (uint16, error) {
	ifr := m.makeifreq(phyAddr, regAddr)
	err := m.ioctl(unix.SIOCGMIIREG, &ifr)
	if err != nil {
		return 0xffff, err
	}
	return ifr.valOut, nil
}

// Write implements [phy.MDIOBus].
func (m *Ioctl) Write(phyAddr uint8, regAddr, value uint16) error {
	ifr := m.makeifreq(phyAddr, regAddr)
	ifr.valIn = value
	return m.ioctl(unix.SIOCSMIIREG, &ifr)
}

// Close releases the control socket.
func (m *Ioctl) Close() error {
	if m.fd < 0 {
		return errors.New("already closed")
	}
	err := unix.Close(m.fd)
	m.fd = -1
	return err
}

func (m *Ioctl) makeifreq(phyAddr uint8, regAddr uint16) (ifr ifreqMII) {
	copy(ifr.name[:], m.iface)
	ifr.phyID = uint16(phyAddr)
	ifr.regNum = regAddr
	return ifr
}

func (m *Ioctl) ioctl(req uint, ifr *ifreqMII) error {
	if m.fd < 0 {
		return ytsw.ErrClosed
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(m.fd), uintptr(req), uintptr(unsafe.Pointer(ifr)))
	if errno != 0 {
		return fmt.Errorf("%s: %w", m.iface, os.NewSyscallError("ioctl", errno))
	}
	return nil
}
