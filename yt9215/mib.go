package yt9215

import (
	"fmt"
	"strconv"

	"github.com/soypat/ytsw"
)

// MIBCounter locates a per-port MIB counter: its word offset in the port
// MIB block and its width in 32-bit words. Wide counters hold the low word
// at Offset.
type MIBCounter struct {
	Name   string
	Offset int
	Words  int
}

// MIBCounters lists the per-port MIB counters of the chip.
var MIBCounters = [...]MIBCounter{
	{"RX_BROADCAST", 0, 1},
	{"RX_PAUSE", 1, 1},
	{"RX_MULTICAST", 2, 1},
	{"RX_FCS_ERR", 3, 1},
	{"RX_ALIGNMENT_ERR", 4, 1},
	{"RX_UNDERSIZE", 5, 1},
	{"RX_FRAGMENT", 6, 1},
	{"RX_64B", 7, 1},
	{"RX_65_127B", 8, 1},
	{"RX_128_255B", 9, 1},
	{"RX_256_511B", 10, 1},
	{"RX_512_1023B", 11, 1},
	{"RX_1024_1518B", 12, 1},
	{"RX_JUMBO", 13, 1},
	{"RX_OKBYTE", 15, 2},
	{"RX_NOT_OKBYTE", 17, 2},
	{"RX_OVERSIZE", 19, 1},
	{"RX_DISCARD", 20, 1},
	{"TX_BROADCAST", 21, 1},
	{"TX_PAUSE", 22, 1},
	{"TX_MULTICAST", 23, 1},
	{"TX_UNDERSIZE", 24, 1},
	{"TX_64B", 25, 1},
	{"TX_65_127B", 26, 1},
	{"TX_128_255B", 27, 1},
	{"TX_256_511B", 28, 1},
	{"TX_512_1023B", 29, 1},
	{"TX_1024_1518B", 30, 1},
	{"TX_JUMBO", 31, 1},
	{"TX_OKBYTE", 33, 2},
	{"TX_COLLISION", 35, 1},
	{"TX_EXCESSIVE_COLLISION", 36, 1},
	{"TX_MULTI_COLLISION", 37, 1},
	{"TX_SINGLE_COLLISION", 38, 1},
	{"TX_OK_PKT", 39, 1},
	{"TX_DEFER", 40, 1},
	{"TX_LATE_COLLISION", 41, 1},
	{"RX_OAM_COUNTER", 42, 1},
	{"TX_OAM_COUNTER", 43, 1},
}

// Offsets of the byte counters used by Stats.
const (
	mibRxOKByte = 15
	mibTxOKByte = 33
)

// LookupMIBCounter returns the counter named name.
func LookupMIBCounter(name string) (MIBCounter, bool) {
	for _, c := range MIBCounters {
		if c.Name == name {
			return c, true
		}
	}
	return MIBCounter{}, false
}

// PortStats holds the byte totals of a port.
type PortStats struct {
	RxBytes uint64
	TxBytes uint64
}

// Stats returns the received and transmitted byte totals of port.
func (sw *Switch) Stats(port int) (PortStats, error) {
	if err := checkPort(port); err != nil {
		return PortStats{}, err
	}
	if err := sw.lock(); err != nil {
		return PortStats{}, err
	}
	defer sw.mu.Unlock()
	tx, err := sw.readMIB(port, mibTxOKByte, 2)
	if err != nil {
		return PortStats{}, err
	}
	rx, err := sw.readMIB(port, mibRxOKByte, 2)
	if err != nil {
		return PortStats{}, err
	}
	return PortStats{RxBytes: rx, TxBytes: tx}, nil
}

// ReadMIB reads a counter of port made of words consecutive 32-bit words
// starting at offset, low word first. words must be 1 or 2.
func (sw *Switch) ReadMIB(port, offset, words int) (uint64, error) {
	if err := checkPort(port); err != nil {
		return 0, err
	} else if words != 1 && words != 2 {
		return 0, fmt.Errorf("mib counter width %d: %w", words, ytsw.ErrInvalidArgument)
	} else if offset < 0 || offset+words > mibCountersPerPort {
		return 0, fmt.Errorf("mib offset %d: %w", offset, ytsw.ErrInvalidArgument)
	}
	if err := sw.lock(); err != nil {
		return 0, err
	}
	defer sw.mu.Unlock()
	return sw.readMIB(port, offset, words)
}

// MIBCounter reads the counter of port named name, as listed in [MIBCounters].
func (sw *Switch) MIBCounter(port int, name string) (uint64, error) {
	c, ok := LookupMIBCounter(name)
	if !ok {
		return 0, fmt.Errorf("mib counter %q: %w", name, ytsw.ErrInvalidArgument)
	}
	return sw.ReadMIB(port, c.Offset, c.Words)
}

// ClearMIB clears the MIB counters of every port.
func (sw *Switch) ClearMIB() error {
	if err := sw.lock(); err != nil {
		return err
	}
	defer sw.mu.Unlock()
	return sw.write(regMIBCtrl, mibPortSelAll|mibOpClean)
}

// ClearPortMIB clears the MIB counters of a single port.
func (sw *Switch) ClearPortMIB(port int) error {
	if err := checkPort(port); err != nil {
		return err
	}
	if err := sw.lock(); err != nil {
		return err
	}
	defer sw.mu.Unlock()
	return sw.write(regMIBCtrl, uint32(port)<<3&mibPortMask|mibPortSelSingle|mibOpClean)
}

func (sw *Switch) readMIB(port, offset, words int) (uint64, error) {
	lo, err := sw.read(regMIBData(port, offset))
	if err != nil || words == 1 {
		return uint64(lo), err
	}
	hi, err := sw.read(regMIBData(port, offset+1))
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// FormatMIB renders a counter value in decimal.
func FormatMIB(v uint64) string {
	return strconv.FormatUint(v, 10)
}
