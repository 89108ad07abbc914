package smi

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/internal/chipsim"
	"github.com/soypat/ytsw/phy"
)

type tx struct {
	read  bool
	addr  uint8
	field uint16
	val   uint16
}

// txbus records raw MDIO transactions and answers reads from a queue.
type txbus struct {
	log   []tx
	reads []uint16
}

func (b *txbus) Read(addr uint8, field uint16) (uint16, error) {
	var v uint16 = 0xffff
	if len(b.reads) > 0 {
		v = b.reads[0]
		b.reads = b.reads[1:]
	}
	b.log = append(b.log, tx{read: true, addr: addr, field: field, val: v})
	return v, nil
}

func (b *txbus) Write(addr uint8, field, val uint16) error {
	b.log = append(b.log, tx{addr: addr, field: field, val: val})
	return nil
}

func TestRegField(t *testing.T) {
	tests := []struct {
		id    uint8
		phase Phase
		dir   Dir
		want  uint16
	}{
		{0, PhaseAddr, DirWrite, 0b0000},
		{0, PhaseAddr, DirRead, 0b0001},
		{0, PhaseData, DirWrite, 0b0010},
		{0, PhaseData, DirRead, 0b0011},
		{2, PhaseAddr, DirRead, 0b1001},
		{3, PhaseData, DirRead, 0b1111},
	}
	for _, test := range tests {
		got := RegField(test.id, test.phase, test.dir)
		if got != test.want {
			t.Errorf("RegField(%d,%d,%d): want %#04b, got %#04b", test.id, test.phase, test.dir, test.want, got)
		}
	}
}

func TestTransactionOrder(t *testing.T) {
	const addr, id = 29, 2
	bus := &txbus{}
	tp, err := NewTransport(phy.NewSharedBus(bus), addr, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = tp.Write(0x80004, 0xdeadbeef)
	if err != nil {
		t.Fatal(err)
	}
	want := []tx{
		{addr: addr, field: 0b1000, val: 0x0008},
		{addr: addr, field: 0b1000, val: 0x0004},
		{addr: addr, field: 0b1010, val: 0xdead},
		{addr: addr, field: 0b1010, val: 0xbeef},
	}
	checkTx(t, bus.log, want)

	bus.log = bus.log[:0]
	bus.reads = []uint16{0x9002, 0x0001}
	v, err := tp.Read(0x80008)
	if err != nil {
		t.Fatal(err)
	} else if v != 0x90020001 {
		t.Fatalf("want 0x90020001, got %#x", v)
	}
	want = []tx{
		{addr: addr, field: 0b1001, val: 0x0008},
		{addr: addr, field: 0b1001, val: 0x0008},
		{read: true, addr: addr, field: 0b1011, val: 0x9002},
		{read: true, addr: addr, field: 0b1011, val: 0x0001},
	}
	checkTx(t, bus.log, want)
}

func checkTx(t *testing.T, got, want []tx) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("want %d transactions, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transaction %d: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	chip := chipsim.New(1, 0)
	tp, err := NewTransport(phy.NewSharedBus(chip), 1, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		reg := 0x100000 + 4*uint32(rng.Intn(0x400))
		val := rng.Uint32()
		if err := tp.Write(reg, val); err != nil {
			t.Fatal(err)
		}
		got, err := tp.Read(reg)
		if err != nil {
			t.Fatal(err)
		} else if got != val {
			t.Fatalf("reg %#x: wrote %#x, read back %#x", reg, val, got)
		}
	}
	if n := chip.Rejected(); n != 0 {
		t.Fatalf("chip rejected %d transactions", n)
	}
}

func TestReadModifyWrite(t *testing.T) {
	const reg = 0x80100
	chip := chipsim.New(0, 1)
	tp, _ := NewTransport(phy.NewSharedBus(chip), 0, 1, nil)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		initial := rng.Uint32()
		mask := rng.Uint32()
		val := rng.Uint32() & mask
		chip.SetReg(reg, initial)
		if err := tp.ReadModifyWrite(reg, mask, val); err != nil {
			t.Fatal(err)
		}
		got := chip.Reg(reg)
		if got&^mask != initial&^mask {
			t.Fatalf("bits outside mask %#x changed: %#x -> %#x", mask, initial, got)
		} else if got&mask != val {
			t.Fatalf("masked bits: want %#x, got %#x", val, got&mask)
		}
	}
}

func TestBusErrorPropagates(t *testing.T) {
	errWire := errors.New("wire fault")
	chip := chipsim.New(0, 0)
	sb := phy.NewSharedBus(chip)
	tp, _ := NewTransport(sb, 0, 0, nil)
	chip.FailAfter(1, errWire)
	err := tp.Write(0x80004, 1)
	if !errors.Is(err, errWire) {
		t.Fatal("expected wire error, got", err)
	}
	if chip.Transactions() != 2 {
		t.Fatalf("sequence not aborted at first error, %d transactions", chip.Transactions())
	}
	chip.FailAfter(0, nil)
	// Bus lock must have been released.
	if err := tp.Write(0x80004, 1); err != nil {
		t.Fatal(err)
	}
}

func TestSharedAddress(t *testing.T) {
	chip0, chip1 := chipsim.New(3, 0), chipsim.New(3, 1)
	sb := phy.NewSharedBus(chipsim.Board{chip0, chip1})
	tp0, _ := NewTransport(sb, 3, 0, nil)
	tp1, _ := NewTransport(sb, 3, 1, nil)
	tp0.Write(0x188008, 0xaaaa)
	tp1.Write(0x188008, 0x5555)
	if chip0.Reg(0x188008) != 0xaaaa || chip1.Reg(0x188008) != 0x5555 {
		t.Fatalf("switch id not honored: %#x %#x", chip0.Reg(0x188008), chip1.Reg(0x188008))
	}
	v, err := tp1.Read(0x188008)
	if err != nil || v != 0x5555 {
		t.Fatal("read from second switch failed", v, err)
	}
}

func TestNewTransportArgs(t *testing.T) {
	sb := phy.NewSharedBus(&txbus{})
	if _, err := NewTransport(sb, 32, 0, nil); !errors.Is(err, ytsw.ErrAddrOutOfRange) {
		t.Error("expected address 32 rejected, got", err)
	}
	if _, err := NewTransport(sb, 0, 4, nil); !errors.Is(err, ytsw.ErrInvalidArgument) {
		t.Error("expected switch id 4 rejected, got", err)
	}
	if _, err := NewTransport(nil, 0, 0, nil); err == nil {
		t.Error("expected nil bus rejected")
	}
}
