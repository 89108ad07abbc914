package yt9215

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soypat/ytsw"
)

// VLANPort is a member port of a VLAN.
type VLANPort struct {
	Port int
	// Tagged is true if frames egress the port with their VLAN tag.
	Tagged bool
}

// PVID returns the default VLAN id assigned to untagged frames entering port.
func (sw *Switch) PVID(port int) (int, error) {
	if err := checkPort(port); err != nil {
		return 0, err
	}
	if err := sw.lock(); err != nil {
		return 0, err
	}
	defer sw.mu.Unlock()
	v, err := sw.read(regPortIgrPVID(port))
	if err != nil {
		return 0, err
	}
	return int(v&igrCVIDMask) >> igrCVIDShift, nil
}

// SetPVID sets the default VLAN id of port. Only the C-VLAN PVID field is modified.
func (sw *Switch) SetPVID(port, vid int) error {
	if err := checkPort(port); err != nil {
		return err
	} else if err = checkVID(vid); err != nil {
		return err
	}
	if err := sw.lock(); err != nil {
		return err
	}
	defer sw.mu.Unlock()
	sw.info("yt9215:set-pvid", slog.Int("port", port), slog.Int("vid", vid))
	return sw.rmw(regPortIgrPVID(port), igrCVIDMask, uint32(vid)<<igrCVIDShift)
}

// VLAN returns the member ports of VLAN vid in ascending port order.
func (sw *Switch) VLAN(vid int) ([]VLANPort, error) {
	if err := checkVID(vid); err != nil {
		return nil, err
	}
	if err := sw.lock(); err != nil {
		return nil, err
	}
	defer sw.mu.Unlock()
	ctrl1, err := sw.read(regVLANCtrl1(vid))
	if err != nil {
		return nil, err
	}
	ctrl2, err := sw.read(regVLANCtrl2(vid))
	if err != nil {
		return nil, err
	}
	members := (ctrl1 & vlanMemberMask) >> vlanMemberShift
	untagged := (ctrl2 & vlanUntagMask) >> vlanUntagShift
	var ports []VLANPort
	for port := 0; port < NumPorts; port++ {
		bit := uint32(1) << port
		if members&bit != 0 {
			ports = append(ports, VLANPort{Port: port, Tagged: untagged&bit == 0})
		}
	}
	return ports, nil
}

// SetVLAN replaces the member ports of VLAN vid. Ports not listed are
// removed from the VLAN. Arguments are validated before any register is
// written so an invalid call leaves the VLAN table untouched.
func (sw *Switch) SetVLAN(vid int, ports []VLANPort) error {
	if err := checkVID(vid); err != nil {
		return err
	}
	var members, untagged uint32
	for _, p := range ports {
		if err := checkPort(p.Port); err != nil {
			return fmt.Errorf("vlan %d: %w", vid, err)
		}
		members |= 1 << p.Port
		if !p.Tagged {
			untagged |= 1 << p.Port
		}
	}
	if err := sw.lock(); err != nil {
		return err
	}
	defer sw.mu.Unlock()
	sw.info("yt9215:set-vlan", slog.Int("vid", vid), slog.String("ports", FormatVLANPorts(ports)))
	return sw.writes(
		regVLANCtrl1(vid), members<<vlanMemberShift,
		regVLANCtrl2(vid), untagged<<vlanUntagShift,
	)
}

// FormatVLANPorts renders ports in the swconfig style where a trailing t
// marks a tagged port: "0 3t 8t".
func FormatVLANPorts(ports []VLANPort) string {
	var b strings.Builder
	for i, p := range ports {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", p.Port)
		if p.Tagged {
			b.WriteByte('t')
		}
	}
	return b.String()
}

// ParseVLANPorts parses the format produced by [FormatVLANPorts].
func ParseVLANPorts(s string) ([]VLANPort, error) {
	fields := strings.Fields(s)
	ports := make([]VLANPort, 0, len(fields))
	for _, f := range fields {
		num, tagged := strings.CutSuffix(f, "t")
		port, err := strconv.Atoi(num)
		if err != nil {
			return nil, fmt.Errorf("vlan port %q: %w", f, ytsw.ErrInvalidArgument)
		} else if err = checkPort(port); err != nil {
			return nil, err
		}
		ports = append(ports, VLANPort{Port: port, Tagged: tagged})
	}
	return ports, nil
}
