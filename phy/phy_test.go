package phy

import (
	"errors"
	"sync"
	"testing"

	"github.com/soypat/ytsw"
)

// regfile is a bus with one register file per PHY address.
type regfile struct {
	regs   map[uint8]*[32]uint16
	onRead func(addr uint8, reg uint16, v uint16) uint16
}

func newRegfile(addrs ...uint8) *regfile {
	rf := &regfile{regs: make(map[uint8]*[32]uint16)}
	for _, a := range addrs {
		rf.regs[a] = new([32]uint16)
		rf.regs[a][AddrBMSR] = uint16(BMSRExtCap | BMSRANCap | BMSR100Full)
	}
	return rf
}

func (rf *regfile) Read(addr uint8, reg uint16) (uint16, error) {
	r, ok := rf.regs[addr]
	if !ok {
		return 0xffff, nil
	}
	v := r[reg&31]
	if rf.onRead != nil {
		v = rf.onRead(addr, reg, v)
	}
	return v, nil
}

func (rf *regfile) Write(addr uint8, reg, v uint16) error {
	r, ok := rf.regs[addr]
	if !ok {
		return nil
	}
	if reg == AddrBMCR && BMCR(v)&BMCRReset != 0 {
		// Reset completes immediately and restores defaults.
		v = uint16(BMCRANEnable)
	}
	r[reg&31] = v
	return nil
}

func TestFindClause22PHYs(t *testing.T) {
	bus := newRegfile(0, 3, 7, 12)
	var found [32]uint8
	n, err := FindClause22PHYs(bus, 0xff, found[:])
	if err != nil {
		t.Fatal(err)
	}
	got := found[:n]
	want := []uint8{0, 3, 7} // 12 is masked out.
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
	_, err = FindClause22PHYs(bus, 0xff, found[:8])
	if !errors.Is(err, ytsw.ErrInvalidArgument) {
		t.Fatal("expected short buffer to be rejected, got", err)
	}
	_, err = FindClause22PHYs(newRegfile(), 0xffffffff, found[:])
	if err == nil {
		t.Fatal("expected error on empty bus")
	}
}

func TestDeviceID(t *testing.T) {
	bus := newRegfile(2)
	bus.regs[2][AddrPHYID1] = 0x4f51
	bus.regs[2][AddrPHYID2] = 0xe91b
	var dev Device
	if err := dev.Configure(bus, 2); err != nil {
		t.Fatal(err)
	}
	id, err := dev.ID()
	if err != nil {
		t.Fatal(err)
	} else if id != 0x4f51e91b {
		t.Fatalf("want id 0x4f51e91b, got %#x", id)
	}
	if err := dev.Configure(bus, 32); !errors.Is(err, ytsw.ErrAddrOutOfRange) {
		t.Fatal("expected address 32 to be rejected, got", err)
	}
}

func TestDeviceReset(t *testing.T) {
	bus := newRegfile(1)
	polls := 0
	bus.onRead = func(addr uint8, reg, v uint16) uint16 {
		if reg == AddrBMCR {
			polls++
			if polls < 3 {
				return v | uint16(BMCRReset)
			}
		}
		return v
	}
	var dev Device
	dev.Configure(bus, 1)
	if err := dev.ResetPHY(); err != nil {
		t.Fatal(err)
	}
	if polls < 3 {
		t.Fatalf("expected reset bit to be polled until clear, got %d polls", polls)
	}
}

func TestDeviceNegotiatedLink(t *testing.T) {
	bus := newRegfile(4)
	r := bus.regs[4]
	r[AddrBMSR] |= uint16(BMSRANComplete | BMSRLinkStatus)
	r[AddrANAR] = uint16(ANARSelector8023 | ANAR100Full | ANAR100Half)
	r[AddrANLPAR] = uint16(ANARSelector8023 | ANAR100Full)
	var dev Device
	dev.Configure(bus, 4)
	mode, err := dev.NegotiatedLink()
	if err != nil {
		t.Fatal(err)
	} else if mode != Link100FDX {
		t.Fatalf("want %s, got %s", Link100FDX, mode)
	}
	r[AddrGBCR] = uint16(GBCR1000Full)
	r[AddrGBSR] = uint16(GBSRPartner1000Full)
	mode, err = dev.NegotiatedLink()
	if err != nil {
		t.Fatal(err)
	} else if mode != Link1000FDX || mode.SpeedMbps() != 1000 || !mode.IsFullDuplex() {
		t.Fatalf("want %s, got %s", Link1000FDX, mode)
	}
	up, err := dev.IsLinkUp()
	if err != nil || !up {
		t.Fatal("expected link up", err)
	}
}

func TestSetupForced(t *testing.T) {
	bus := newRegfile(0)
	var dev Device
	dev.Configure(bus, 0)
	if err := dev.SetupForced(Link100FDX); err != nil {
		t.Fatal(err)
	}
	ctl, _ := dev.BasicControl()
	if ctl != BMCRSpeed100|BMCRFullDuplex {
		t.Fatalf("unexpected BMCR %#04x", uint16(ctl))
	}
	if err := dev.SetupForced(LinkDown); !errors.Is(err, ytsw.ErrUnsupported) {
		t.Fatal("expected unsupported error forcing link down, got", err)
	}
}

// recbus records every transaction issued on it.
type recbus struct {
	mu  sync.Mutex
	log []uint16
}

func (rb *recbus) Read(addr uint8, reg uint16) (uint16, error) { return 0, nil }
func (rb *recbus) Write(addr uint8, reg, v uint16) error {
	rb.mu.Lock()
	rb.log = append(rb.log, v)
	rb.mu.Unlock()
	return nil
}

func TestSharedBusExclusive(t *testing.T) {
	const routines = 8
	const sequences = 50
	rb := &recbus{}
	sb := NewSharedBus(rb)
	var wg sync.WaitGroup
	for g := 0; g < routines; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := 0; s < sequences; s++ {
				sb.Exclusive(func(bus MDIOBus) error {
					for i := 0; i < 4; i++ {
						bus.Write(0, 0, uint16(g))
					}
					return nil
				})
			}
		}()
	}
	wg.Wait()
	if len(rb.log) != routines*sequences*4 {
		t.Fatalf("missing transactions: %d", len(rb.log))
	}
	for i := 0; i < len(rb.log); i += 4 {
		seq := rb.log[i : i+4]
		if seq[0] != seq[1] || seq[0] != seq[2] || seq[0] != seq[3] {
			t.Fatalf("interleaved sequence at %d: %v", i, seq)
		}
	}
}
