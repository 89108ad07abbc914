package mdiodev

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	"github.com/soypat/ytsw"
	"github.com/soypat/ytsw/phy"
)

// DefaultMDCFrequency is the highest MDC clock rate allowed by IEEE 802.3.
const DefaultMDCFrequency = 2500 * physic.KiloHertz

// GPIO is a bit-banged MDIO bus on two GPIO lines. MDC is driven as an
// output and MDIO switches between output and pulled up input.
// GPIO is not safe for concurrent use, wrap it in a [phy.SharedBus].
type GPIO struct {
	mdc, mdio gpio.PinIO
	half      time.Duration
	bb        phy.MDIOBitBang
	// err holds the first pin error raised during a frame.
	err error
}

// NewGPIO returns a bus clocking mdc at up to freq. A zero freq selects
// [DefaultMDCFrequency].
func NewGPIO(mdc, mdio gpio.PinIO, freq physic.Frequency) (*GPIO, error) {
	if mdc == nil || mdio == nil {
		return nil, errors.New("nil gpio pin")
	}
	if freq == 0 {
		freq = DefaultMDCFrequency
	} else if freq < 0 || freq > DefaultMDCFrequency {
		return nil, fmt.Errorf("mdc frequency %s: %w", freq, ytsw.ErrInvalidArgument)
	}
	g := &GPIO{mdc: mdc, mdio: mdio, half: freq.Period() / 2}
	if err := mdc.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("mdc %s: %w", mdc, err)
	}
	g.bb.Configure(g.sendBit, g.getBit, g.setDir)
	if g.err != nil {
		return nil, fmt.Errorf("mdio %s: %w", mdio, g.err)
	}
	return g, nil
}

// OpenGPIO looks up the named pins in the periph GPIO registry and returns
// a bus on them. The host drivers must have been initialized beforehand.
func OpenGPIO(mdcName, mdioName string, freq physic.Frequency) (*GPIO, error) {
	mdc := gpioreg.ByName(mdcName)
	if mdc == nil {
		return nil, fmt.Errorf("mdc pin %q not found", mdcName)
	}
	mdio := gpioreg.ByName(mdioName)
	if mdio == nil {
		return nil, fmt.Errorf("mdio pin %q not found", mdioName)
	}
	return NewGPIO(mdc, mdio, freq)
}

// Read implements [phy.MDIOBus].
func (g *GPIO) Read(phyAddr uint8, regAddr uint16) (uint16, error) {
	g.err = nil
	v, err := g.bb.Read(phyAddr, regAddr)
	if g.err != nil {
		return 0xffff, g.err
	}
	return v, err
}

// Write implements [phy.MDIOBus].
func (g *GPIO) Write(phyAddr uint8, regAddr, value uint16) error {
	g.err = nil
	err := g.bb.Write(phyAddr, regAddr, value)
	if g.err != nil {
		return g.err
	}
	return err
}

func (g *GPIO) sendBit(b bool) {
	g.check(g.mdio.Out(gpio.Level(b)))
	g.delay()
	g.check(g.mdc.Out(gpio.High))
	g.delay()
	g.check(g.mdc.Out(gpio.Low))
}

func (g *GPIO) getBit() bool {
	g.delay()
	g.check(g.mdc.Out(gpio.High))
	g.delay()
	g.check(g.mdc.Out(gpio.Low))
	return bool(g.mdio.Read())
}

func (g *GPIO) setDir(output bool) {
	if output {
		g.check(g.mdio.Out(gpio.High))
	} else {
		g.check(g.mdio.In(gpio.PullUp, gpio.NoEdge))
	}
}

func (g *GPIO) check(err error) {
	if err != nil && g.err == nil {
		g.err = err
	}
}

// delay spins for half an MDC period.
func (g *GPIO) delay() {
	for start := time.Now(); time.Since(start) < g.half; {
	}
}
