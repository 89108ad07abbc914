package yt9215

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/internal"
)

const (
	resetPollInterval = 10 * time.Millisecond
	resetTimeout      = 100 * time.Millisecond
	// Hardware reset is as disruptive as toggling the reset pin and the chip
	// needs time to settle after the reset bit clears.
	resetSettle = 10 * time.Millisecond
)

// Configure resets the chip and programs it from scratch: MIB counters are
// enabled and cleared, VLAN 1 is created with every port as an untagged
// member and made the PVID of every port, and the MAC of every configured
// port is brought up.
//
// A reset that does not complete in time is logged as a warning and the
// sequence continues. Bus errors abort the sequence.
func (sw *Switch) Configure() error {
	if err := sw.lock(); err != nil {
		return err
	}
	defer sw.mu.Unlock()
	err := sw.configure()
	if err != nil {
		return fmt.Errorf("yt9215 configure: %w", err)
	}
	return nil
}

// Reset re-runs Configure, returning the switch to its power-on defaults
// plus the board port configuration.
func (sw *Switch) Reset() error {
	return sw.Configure()
}

func (sw *Switch) configure() error {
	err := sw.reset()
	if err != nil {
		return err
	}
	sw.debug("yt9215:mib-enable")
	err = sw.rmw(regFuncCtrl, funcMIB, funcMIB)
	if err != nil {
		return err
	}
	err = sw.write(regMIBCtrl, mibPortSelAll|mibOpClean)
	if err != nil {
		return err
	}
	err = sw.initVLANs()
	if err != nil {
		return err
	}
	return sw.initPorts()
}

func (sw *Switch) reset() error {
	sw.debug("yt9215:reset")
	err := sw.write(regResetCtrl, resetHW)
	if err != nil {
		return err
	}
	v, err := internal.PollTimeout(func() (uint32, error) {
		return sw.read(regResetCtrl)
	}, func(v uint32) bool { return v == 0 }, resetPollInterval, resetTimeout)
	if errors.Is(err, ytsw.ErrTimeout) {
		sw.warn("yt9215:reset-timeout", internal.SlogHex32("reset_ctrl", v))
	} else if err != nil {
		return err
	}
	time.Sleep(resetSettle)
	return nil
}

// initVLANs programs the default tagging topology: every port recognizes
// 802.1Q C-tags, VLAN 1 holds every port untagged and is every port's PVID.
func (sw *Switch) initVLANs() error {
	sw.debug("yt9215:vlan-defaults")
	err := sw.writes(
		regEgrTPID(0), tpid8021Q,
		regPortEgrVLANFilter, portMask,
		regIgrTPID(0), tpid8021Q,
		regIgrTPID(1), tpid8021AD,
		regLookupSVID, 0,
		regPortIgrVLANFilter, portMask,
		regVLANCtrl1(1), portMask<<vlanMemberShift,
		regVLANCtrl2(1), portMask<<vlanUntagShift,
	)
	if err != nil {
		return err
	}
	for port := 0; port < NumPorts; port++ {
		// Only the outer VID is looked at on ingress.
		err = sw.writes(
			regPortEgrCtrl(port), egrCTagTPIDSel(0),
			regPortEgrVLAN(port), egrModeUntag<<egrSTagModeShift|egrModeLookup<<egrCTagModeShift,
			regPortIgrTPID(port), 0b11,
			regPortIgrPVID(port), 1<<igrCVIDShift,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (sw *Switch) initPorts() error {
	for _, pc := range sw.ports {
		if checkPort(pc.Index) != nil {
			sw.warn("yt9215:port-skipped", slog.Int("port", pc.Index))
			continue
		}
		err := sw.initPort(pc)
		if err != nil {
			return fmt.Errorf("port %d: %w", pc.Index, err)
		}
	}
	return nil
}

func (sw *Switch) initPort(pc ytsw.PortConfig) error {
	var val uint32 = portRxMACEn | portTxMACEn
	var speed ytsw.Speed
	fullDuplex := false
	if fl := pc.FixedLink; fl != nil {
		speed = ytsw.SpeedFromMbps(fl.Speed)
		fullDuplex = fl.FullDuplex
		val |= speedField(speed)
		if fl.FullDuplex {
			val |= portDuplexFull
		}
		if fl.Pause {
			val |= portRxFlowCtrl
		}
		if fl.AsymPause {
			val |= portTxFlowCtrl
		}
	} else {
		val |= portLinkAN | portFlowCtrlAN
	}
	sw.debug("yt9215:port-init", slog.Int("port", pc.Index), slog.String("mode", pc.Mode.String()),
		internal.SlogHex32("port_ctrl", val))
	err := sw.write(regPortCtrl(pc.Index), val)
	if err != nil {
		return err
	}
	switch {
	case pc.Mode.IsSerial():
		if pc.Index != serialPort {
			sw.warn("yt9215:serdes-port", slog.Int("port", pc.Index), slog.String("mode", pc.Mode.String()))
			return nil
		}
		return sw.initSerDes(pc.Mode, speed, fullDuplex)
	case pc.Mode.IsRGMII():
		sw.warn("yt9215:rgmii-unprogrammed", slog.Int("port", pc.Index), slog.String("mode", pc.Mode.String()))
	case pc.Mode == ytsw.ModeOther:
		sw.warn("yt9215:mode-unsupported", slog.Int("port", pc.Index))
	}
	return nil
}

// initSerDes routes external interface 0 to the SerDes and sets its link
// parameters.
func (sw *Switch) initSerDes(mode ytsw.InterfaceMode, speed ytsw.Speed, fullDuplex bool) error {
	err := sw.rmw(regExtIfCtrl, extIf0Enable, extIf0Enable)
	if err != nil {
		return err
	}
	err = sw.rmw(regExtIfSel, extIf1SelMask, extIf1SelXMII)
	if err != nil {
		return err
	}
	err = sw.rmw(regExtIfSel, extIf0SelMask, extIf0SelSerDes)
	if err != nil {
		return err
	}
	var val uint32 = sgmiiLink | speedField(speed)
	if mode == ytsw.Mode2500BaseX {
		val |= sgmiiMode2500BaseX
	} else {
		val |= sgmiiModeSGMIIPHY
	}
	if fullDuplex {
		val |= sgmiiDuplexFull
	}
	return sw.write(regSGMIICtrl(0), val)
}

// speedField returns the MAC speed field encoding. Unknown speeds leave the
// field zeroed.
func speedField(s ytsw.Speed) uint32 {
	switch s {
	case ytsw.Speed100:
		return speedField100
	case ytsw.Speed1000:
		return speedField1000
	case ytsw.Speed2500:
		return speedField2500
	default:
		return speedField10
	}
}
