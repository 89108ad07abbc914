package yt9215

import "github.com/soypat/ytsw"

// Link is the state of a port MAC as reported by the port status register.
type Link struct {
	// Up is true when both the receive and transmit MAC are enabled. It
	// reflects MAC gating, not PHY carrier.
	Up         bool
	FullDuplex bool
	Speed      ytsw.Speed
	TxFlow     bool
	RxFlow     bool
	// AutoNeg is always reported as true.
	AutoNeg bool
}

// Link reads the MAC state of port.
func (sw *Switch) Link(port int) (Link, error) {
	if err := checkPort(port); err != nil {
		return Link{}, err
	}
	if err := sw.lock(); err != nil {
		return Link{}, err
	}
	defer sw.mu.Unlock()
	status, err := sw.read(regPortStatus(port))
	if err != nil {
		return Link{}, err
	}
	return decodeLink(status), nil
}

func decodeLink(status uint32) Link {
	return Link{
		Up:         status&portRxMACEn != 0 && status&portTxMACEn != 0,
		FullDuplex: status&portDuplexFull != 0,
		Speed:      decodeSpeed(status & portSpeedMask),
		TxFlow:     status&portTxFlowCtrl != 0,
		RxFlow:     status&portRxFlowCtrl != 0,
		AutoNeg:    true,
	}
}

func decodeSpeed(field uint32) ytsw.Speed {
	switch field {
	case speedField10:
		return ytsw.Speed10
	case speedField100:
		return ytsw.Speed100
	case speedField1000:
		return ytsw.Speed1000
	case speedField2500:
		return ytsw.Speed2500
	default:
		return ytsw.SpeedUnknown
	}
}
