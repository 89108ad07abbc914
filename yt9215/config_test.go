package yt9215

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/internal/chipsim"
)

var testPorts = []ytsw.PortConfig{
	{Index: 0, Mode: ytsw.ModeInternal},
	{Index: 3, Mode: ytsw.ModeInternal, FixedLink: &ytsw.FixedLink{Speed: 100, FullDuplex: true, Pause: true}},
	{Index: 5, Mode: ytsw.ModeRGMII, FixedLink: &ytsw.FixedLink{Speed: 1000, FullDuplex: true, AsymPause: true}},
	{Index: 8, Mode: ytsw.ModeSGMII, FixedLink: &ytsw.FixedLink{Speed: 1000, FullDuplex: true}},
	{Index: 11, Mode: ytsw.ModeInternal},
}

func TestConfigureFromArbitraryState(t *testing.T) {
	chip := chipsim.New(testAddr, 0)
	// Reset never takes effect so left over state must be overwritten.
	chip.SetResetStuck(true)
	rng := rand.New(rand.NewSource(1))
	for vid := 0; vid < 8; vid++ {
		chip.SetReg(regVLANCtrl1(vid), rng.Uint32())
		chip.SetReg(regVLANCtrl2(vid), rng.Uint32())
	}
	for port := 0; port < NumPorts; port++ {
		chip.SetReg(regPortCtrl(port), rng.Uint32())
		chip.SetReg(regPortIgrPVID(port), rng.Uint32())
		chip.SetReg(regMIBData(port, 15), rng.Uint32())
	}
	chip.SetReg(regExtIfSel, 0b10)
	sw, logs := newTestSwitch(t, chip, testPorts...)
	if err := sw.Configure(); err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"reset-timeout", "rgmii-unprogrammed", "port-skipped"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("expected %q warning in logs:\n%s", msg, logs.String())
		}
	}

	ports, err := sw.VLAN(1)
	if err != nil {
		t.Fatal(err)
	} else if len(ports) != NumPorts {
		t.Fatalf("vlan 1 has %d members", len(ports))
	}
	for _, p := range ports {
		if p.Tagged {
			t.Errorf("port %d tagged in vlan 1", p.Port)
		}
	}
	for port := 0; port < NumPorts; port++ {
		pvid, err := sw.PVID(port)
		if err != nil {
			t.Fatal(err)
		} else if pvid != 1 {
			t.Errorf("port %d pvid %d", port, pvid)
		}
		if chip.Reg(regMIBData(port, 15)) != 0 {
			t.Errorf("port %d MIB not cleared", port)
		}
	}
	const macEn = portRxMACEn | portTxMACEn
	wantCtrl := map[int]uint32{
		0: macEn | portLinkAN | portFlowCtrlAN,
		3: macEn | speedField100 | portDuplexFull | portRxFlowCtrl,
		5: macEn | speedField1000 | portDuplexFull | portTxFlowCtrl,
		8: macEn | speedField1000 | portDuplexFull,
	}
	for port, want := range wantCtrl {
		if got := chip.Reg(regPortCtrl(port)); got != want {
			t.Errorf("port %d control: want %#x, got %#x", port, want, got)
		}
	}
	if chip.Reg(regFuncCtrl)&funcMIB == 0 {
		t.Error("MIB function not enabled")
	}
	if chip.Reg(regExtIfCtrl)&extIf0Enable == 0 {
		t.Error("external interface 0 not enabled")
	}
	if sel := chip.Reg(regExtIfSel); sel&extIf0SelMask != extIf0SelSerDes || sel&extIf1SelMask != extIf1SelXMII {
		t.Errorf("external interface select %#b", sel)
	}
	wantSerDes := uint32(sgmiiLink | sgmiiModeSGMIIPHY | speedField1000 | sgmiiDuplexFull)
	if got := chip.Reg(regSGMIICtrl(0)); got != wantSerDes {
		t.Errorf("serdes control: want %#x, got %#x", wantSerDes, got)
	}
	if chip.Reg(regEgrTPID(0)) != tpid8021Q || chip.Reg(regIgrTPID(1)) != tpid8021AD {
		t.Error("TPID tables not programmed")
	}
	if chip.Reg(regPortIgrVLANFilter) != portMask || chip.Reg(regPortEgrVLANFilter) != portMask {
		t.Error("VLAN filters not enabled on all ports")
	}
}

func TestConfigureReset(t *testing.T) {
	chip := chipsim.New(testAddr, 0)
	sw, logs := newTestSwitch(t, chip, ytsw.PortConfig{
		Index:     8,
		Mode:      ytsw.Mode2500BaseX,
		FixedLink: &ytsw.FixedLink{Speed: 2500, FullDuplex: true},
	})
	if err := sw.SetVLAN(7, []VLANPort{{Port: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := sw.Reset(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs.String(), "reset-timeout") {
		t.Fatal("unexpected reset timeout")
	}
	if chip.Reg(regResetCtrl) != 0 {
		t.Fatal("reset bit did not clear")
	}
	// Hardware reset erases the VLAN table.
	if ports, _ := sw.VLAN(7); len(ports) != 0 {
		t.Fatal("vlan 7 survived reset", ports)
	}
	want := uint32(sgmiiLink | sgmiiMode2500BaseX | speedField2500 | sgmiiDuplexFull)
	if got := chip.Reg(regSGMIICtrl(0)); got != want {
		t.Fatalf("serdes control: want %#x, got %#x", want, got)
	}
	if chip.Writes(regResetCtrl) != 1 {
		t.Fatal("expected a single reset request")
	}
}

func TestConfigureSerDesOnlyOnUplink(t *testing.T) {
	chip := chipsim.New(testAddr, 0)
	sw, _ := newTestSwitch(t, chip, ytsw.PortConfig{Index: 4, Mode: ytsw.ModeSGMII})
	if err := sw.Configure(); err != nil {
		t.Fatal(err)
	}
	if chip.Writes(regSGMIICtrl(0)) != 0 || chip.Writes(regExtIfSel) != 0 {
		t.Fatal("serdes programmed for a port other than the uplink")
	}
}

func TestConfigureBusError(t *testing.T) {
	errWire := errors.New("mdio timeout")
	chip := chipsim.New(testAddr, 0)
	sw, _ := newTestSwitch(t, chip, testPorts...)
	chip.FailAfter(40, errWire)
	err := sw.Configure()
	if !errors.Is(err, errWire) {
		t.Fatal("expected bus error, got", err)
	}
	chip.FailAfter(0, nil)
	if err = sw.Configure(); err != nil {
		t.Fatal(err)
	}
}
