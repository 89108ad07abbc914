package phy

import (
	"errors"
	"testing"
)

// wire emulates a Clause 22 PHY at the bit level.
type wire struct {
	phyaddr uint8
	regs    [32]uint16
	out     bool
	rx      []bool
	tx      []bool
}

func (w *wire) setDir(out bool) {
	if out && !w.out {
		w.rx = w.rx[:0]
	}
	w.out = out
}

func (w *wire) sendBit(b bool) {
	if !w.out {
		panic("sendBit with MDIO as input")
	}
	w.rx = append(w.rx, b)
	const hdr = 32 + 14
	if len(w.rx) == hdr {
		op := bitsval(w.rx[34:36])
		phy := uint8(bitsval(w.rx[36:41]))
		reg := bitsval(w.rx[41:46])
		if op == mdioRead && phy == w.phyaddr {
			w.tx = append(w.tx[:0], false)
			v := w.regs[reg]
			for i := 15; i >= 0; i-- {
				w.tx = append(w.tx, v&(1<<i) != 0)
			}
		}
	} else if len(w.rx) == hdr+2+16 {
		op := bitsval(w.rx[34:36])
		phy := uint8(bitsval(w.rx[36:41]))
		if op == mdioWrite && phy == w.phyaddr {
			w.regs[bitsval(w.rx[41:46])] = bitsval(w.rx[hdr+2:])
		}
	}
}

func (w *wire) getBit() bool {
	if len(w.tx) == 0 {
		return true // Pulled up.
	}
	b := w.tx[0]
	w.tx = w.tx[1:]
	return b
}

func bitsval(bits []bool) (v uint16) {
	for _, b := range bits {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

func TestMDIOBitBang(t *testing.T) {
	w := &wire{phyaddr: 5}
	var m MDIOBitBang
	m.Configure(w.sendBit, w.getBit, w.setDir)

	if err := m.Write(5, AddrANAR, 0x05e1); err != nil {
		t.Fatal(err)
	}
	if w.regs[AddrANAR] != 0x05e1 {
		t.Fatalf("write not decoded by PHY, got %#04x", w.regs[AddrANAR])
	}
	w.regs[AddrPHYID1] = 0x4f51
	v, err := m.Read(5, AddrPHYID1)
	if err != nil {
		t.Fatal(err)
	} else if v != 0x4f51 {
		t.Fatalf("want 0x4f51, got %#04x", v)
	}
	// Nobody answers at address 6.
	_, err = m.Read(6, AddrPHYID1)
	if !errors.Is(err, errTurnaround) {
		t.Fatal("expected turnaround error, got", err)
	}
	if _, err = m.Read(5, 32); err == nil {
		t.Fatal("expected register 32 to be rejected")
	}
}
