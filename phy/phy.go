// Package phy provides Clause 22 Ethernet PHY management over MDIO: the bus
// HAL shared by every MDIO user in this module, a locking wrapper for buses
// shared by several drivers, a software bit-bang bus and a PHY driver for
// the standard IEEE 802.3 registers.
package phy

//go:generate stringer -type=LinkMode -linecomment -output=phy_stringers.go

import (
	"errors"
	"fmt"
	"time"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/internal"
)

// FindClause22PHYs probes every address set in mask and writes the addresses
// that answer with a plausible basic status register to dst.
// FindClause22PHYs returns error only if no PHY could be found.
func FindClause22PHYs(bus MDIOBus, mask uint32, dst []uint8) (n int, err error) {
	if len(dst) < 32 {
		return -1, fmt.Errorf("dst too short: %w", ytsw.ErrInvalidArgument)
	}
	for addr := uint8(0); addr <= maxPHYAddr; addr++ {
		if mask&(1<<addr) == 0 {
			continue
		}
		val, err := bus.Read(addr, AddrBMSR)
		if err != nil {
			continue
		}
		// Floating or pulled-up MDIO lines read back all zeros or all ones.
		if val != 0xffff && val != 0x0000 {
			dst[n] = addr
			n++
		}
	}
	if n <= 0 {
		err = errors.New("no phy found")
	}
	return n, err
}

// Device is a Clause 22 PHY on an MDIO bus.
type Device struct {
	mdio    MDIOBus
	phyaddr uint8
}

// Configure resets the Device to use the PHY at phyAddr on mdio. It performs no bus access.
func (phy *Device) Configure(mdio MDIOBus, phyAddr uint8) error {
	if phyAddr > maxPHYAddr {
		return fmt.Errorf("phy address %d: %w", phyAddr, ytsw.ErrAddrOutOfRange)
	} else if mdio == nil {
		return fmt.Errorf("nil mdio bus: %w", ytsw.ErrInvalidArgument)
	}
	phy.mdio = mdio
	phy.phyaddr = phyAddr
	return nil
}

// PHYAddr returns the PHY address on the MDIO bus (0-31).
func (phy *Device) PHYAddr() uint8 {
	return phy.phyaddr
}

// BasicControl reads the Basic Mode Control Register.
func (phy *Device) BasicControl() (BMCR, error) {
	ctl, err := phy.rread(AddrBMCR)
	return BMCR(ctl), err
}

// BasicStatus reads the Basic Mode Status Register.
func (phy *Device) BasicStatus() (BMSR, error) {
	stat, err := phy.rread(AddrBMSR)
	return BMSR(stat), err
}

// ID returns the 32-bit PHY identifier made up of registers 2 (high half) and 3.
func (phy *Device) ID() (uint32, error) {
	id1, err := phy.rread(AddrPHYID1)
	if err != nil {
		return 0, err
	}
	id2, err := phy.rread(AddrPHYID2)
	if err != nil {
		return 0, err
	}
	return uint32(id1)<<16 | uint32(id2), nil
}

// ResetPHY performs a software reset and waits for the reset bit to self-clear.
// IEEE 802.3 allows up to 500ms for the reset to complete.
func (phy *Device) ResetPHY() error {
	err := phy.rwrite(AddrBMCR, uint16(BMCRReset))
	if err != nil {
		return err
	}
	const resetTimeout = 500 * time.Millisecond
	_, err = internal.PollTimeout(phy.BasicControl, func(ctl BMCR) bool {
		return ctl&BMCRReset == 0
	}, resetTimeout/50, resetTimeout)
	if err != nil {
		return fmt.Errorf("phy %d reset: %w", phy.phyaddr, err)
	}
	return nil
}

// EnableAutoNegotiation enables or disables auto-negotiation and verifies the change took effect.
func (phy *Device) EnableAutoNegotiation(b bool) error {
	ctl, err := phy.BasicControl()
	if err != nil {
		return err
	}
	if b {
		ctl |= BMCRANEnable
	} else {
		ctl &^= BMCRANEnable
	}
	err = phy.rwrite(AddrBMCR, uint16(ctl))
	if err != nil {
		return err
	}
	ctl, err = phy.BasicControl()
	if err != nil {
		return err
	} else if (ctl&BMCRANEnable != 0) != b {
		return errors.New("unable to set auto-negotiation enable bit")
	}
	return nil
}

// RestartAutoNeg enables auto-negotiation and restarts it.
func (phy *Device) RestartAutoNeg() error {
	ctl, err := phy.BasicControl()
	if err != nil {
		return err
	}
	ctl |= BMCRANEnable | BMCRANRestart
	return phy.rwrite(AddrBMCR, uint16(ctl))
}

// SetupForced disables auto-negotiation and forces a specific link mode.
func (phy *Device) SetupForced(mode LinkMode) error {
	var ctl BMCR
	switch mode.SpeedMbps() {
	case 1000:
		ctl |= BMCRSpeed1000
	case 100:
		ctl |= BMCRSpeed100
	case 10:
		// No speed bits = 10Mbps
	default:
		return fmt.Errorf("forced mode %s: %w", mode, ytsw.ErrUnsupported)
	}
	if mode.IsFullDuplex() {
		ctl |= BMCRFullDuplex
	}
	return phy.rwrite(AddrBMCR, uint16(ctl))
}

// IsLinkUp returns true if link is established. The link bit latches low so
// the status register is read twice to discard a stale link failure.
func (phy *Device) IsLinkUp() (bool, error) {
	_, err := phy.BasicStatus()
	if err != nil {
		return false, err
	}
	status, err := phy.BasicStatus()
	if err != nil {
		return false, err
	}
	return status.LinkUp(), nil
}

// WaitForLink waits up to timeout for the link to come up, waiting for
// auto-negotiation to complete first when it is enabled.
func (phy *Device) WaitForLink(timeout time.Duration) (bool, error) {
	const pollInterval = 50 * time.Millisecond
	ctl, err := phy.BasicControl()
	if err != nil {
		return false, err
	} else if ctl&BMCRIsolate != 0 {
		return false, errors.New("PHY isolated from MII")
	} else if ctl&BMCRPowerDown != 0 {
		return false, errors.New("PHY powered down")
	}
	anEnabled := ctl&BMCRANEnable != 0
	_, _ = phy.BasicStatus() // Clear latched-low bits.
	_, err = internal.PollTimeout(phy.BasicStatus, func(status BMSR) bool {
		return status.LinkUp() && (!anEnabled || status.AutoNegotiationComplete())
	}, pollInterval, timeout)
	if errors.Is(err, ytsw.ErrTimeout) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// NegotiatedLink returns the link mode resolved from our advertisement and
// the link partner abilities, gigabit included.
func (phy *Device) NegotiatedLink() (LinkMode, error) {
	status, err := phy.BasicStatus()
	if err != nil {
		return LinkDown, err
	} else if !status.AutoNegotiationComplete() {
		return LinkDown, errors.New("auto-negotiation not complete")
	}
	var regs [4]uint16
	for i, addr := range [4]uint16{AddrANAR, AddrANLPAR, AddrGBCR, AddrGBSR} {
		regs[i], err = phy.rread(addr)
		if err != nil {
			return LinkDown, err
		}
	}
	return resolveLinkMode(ANAR(regs[0]), ANAR(regs[1]), GBCR(regs[2]), GBSR(regs[3])), nil
}

// SetAdvertisement writes the advertisement register.
// Does NOT restart auto-negotiation; call RestartAutoNeg after if needed.
func (phy *Device) SetAdvertisement(ad ANAR) error {
	return phy.rwrite(AddrANAR, uint16(ad))
}

func (phy *Device) rread(regaddr uint16) (uint16, error) {
	return phy.mdio.Read(phy.phyaddr, regaddr)
}

func (phy *Device) rwrite(regaddr, value uint16) error {
	return phy.mdio.Write(phy.phyaddr, regaddr, value)
}
