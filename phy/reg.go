package phy

// Clause 22 registers as defined by IEEE 802.3 section 22.2.4.
const (
	AddrBMCR   = 0x00 // Basic Mode Control Register.
	AddrBMSR   = 0x01 // Basic Mode Status Register.
	AddrPHYID1 = 0x02 // PHY Identifier, OUI bits 3-18.
	AddrPHYID2 = 0x03 // PHY Identifier, OUI bits 19-24, model and revision.
	AddrANAR   = 0x04 // Auto-Negotiation Advertisement Register.
	AddrANLPAR = 0x05 // Auto-Negotiation Link Partner Ability Register.
	AddrGBCR   = 0x09 // 1000BASE-T Control Register.
	AddrGBSR   = 0x0a // 1000BASE-T Status Register.

	// maxRegAddr is the last register a Clause 22 PHY decodes.
	maxRegAddr = 31
	// maxPHYAddr is the last address on a Clause 22 bus.
	maxPHYAddr = 31
)

// BMCR represents the Basic Mode Control Register.
type BMCR uint16

const (
	BMCRSpeed1000  BMCR = 0x0040 // MSB of speed selection (1000Mbps)
	BMCRFullDuplex BMCR = 0x0100 // Full duplex mode
	BMCRANRestart  BMCR = 0x0200 // Restart auto-negotiation (self-clearing)
	BMCRIsolate    BMCR = 0x0400 // Isolate PHY from MII
	BMCRPowerDown  BMCR = 0x0800 // Power down PHY
	BMCRANEnable   BMCR = 0x1000 // Enable auto-negotiation
	BMCRSpeed100   BMCR = 0x2000 // LSB of speed selection (100Mbps)
	BMCRLoopback   BMCR = 0x4000 // Near-end loopback
	BMCRReset      BMCR = 0x8000 // Software reset (self-clearing)
)

// BMSR represents the Basic Mode Status Register.
type BMSR uint16

const (
	BMSRExtCap     BMSR = 0x0001 // Extended register capability
	BMSRLinkStatus BMSR = 0x0004 // Link status, latched low
	BMSRANCap      BMSR = 0x0008 // Auto-negotiation capable
	BMSRANComplete BMSR = 0x0020 // Auto-negotiation complete
	BMSRExtStatus  BMSR = 0x0100 // Extended status in register 15
	BMSR10Half     BMSR = 0x0800 // 10Mbps half-duplex capable
	BMSR10Full     BMSR = 0x1000 // 10Mbps full-duplex capable
	BMSR100Half    BMSR = 0x2000 // 100Mbps half-duplex capable
	BMSR100Full    BMSR = 0x4000 // 100Mbps full-duplex capable
)

// LinkUp reports the link status bit.
func (s BMSR) LinkUp() bool { return s&BMSRLinkStatus != 0 }

// AutoNegotiationComplete reports whether the advertised abilities have been exchanged.
func (s BMSR) AutoNegotiationComplete() bool { return s&BMSRANComplete != 0 }

// ANAR represents the Auto-Negotiation Advertisement Register. The link
// partner ability register shares its layout.
type ANAR uint16

const (
	ANARSelector8023 ANAR = 0x0001 // IEEE 802.3 selector
	ANAR10Half       ANAR = 0x0020
	ANAR10Full       ANAR = 0x0040
	ANAR100Half      ANAR = 0x0080
	ANAR100Full      ANAR = 0x0100
	ANARPause        ANAR = 0x0400 // Symmetric pause
	ANARPauseAsym    ANAR = 0x0800 // Asymmetric pause

	ANARSpeedMask = ANAR10Half | ANAR10Full | ANAR100Half | ANAR100Full
	ANARPauseMask = ANARPause | ANARPauseAsym
)

// GBCR represents the 1000BASE-T Control Register.
type GBCR uint16

const (
	GBCR1000Half GBCR = 0x0100 // Advertise 1000BASE-T half duplex
	GBCR1000Full GBCR = 0x0200 // Advertise 1000BASE-T full duplex
)

// GBSR represents the 1000BASE-T Status Register. Its partner ability bits
// sit two positions above the matching [GBCR] advertisement bits.
type GBSR uint16

const (
	GBSRPartner1000Half GBSR = 0x0400
	GBSRPartner1000Full GBSR = 0x0800
)

// LinkMode is a resolved speed and duplex combination.
type LinkMode uint8

const (
	LinkDown    LinkMode = iota // down
	Link10HDX                   // 10M-H
	Link10FDX                   // 10M-F
	Link100HDX                  // 100M-H
	Link100FDX                  // 100M-F
	Link1000HDX                 // 1000M-H
	Link1000FDX                 // 1000M-F
)

// SpeedMbps returns the link speed in megabits per second.
func (lm LinkMode) SpeedMbps() int {
	switch lm {
	case Link10HDX, Link10FDX:
		return 10
	case Link100HDX, Link100FDX:
		return 100
	case Link1000HDX, Link1000FDX:
		return 1000
	default:
		return 0
	}
}

// IsFullDuplex returns true if the link mode is full duplex.
func (lm LinkMode) IsFullDuplex() bool {
	return lm == Link10FDX || lm == Link100FDX || lm == Link1000FDX
}

// resolveLinkMode picks the highest common ability as per IEEE 802.3 Annex 28B.3,
// gigabit modes taking priority over the ANAR ones.
func resolveLinkMode(anar, anlpar ANAR, gbcr GBCR, gbsr GBSR) LinkMode {
	common := anar & anlpar
	switch {
	case gbcr&GBCR1000Full != 0 && gbsr&GBSRPartner1000Full != 0:
		return Link1000FDX
	case gbcr&GBCR1000Half != 0 && gbsr&GBSRPartner1000Half != 0:
		return Link1000HDX
	case common&ANAR100Full != 0:
		return Link100FDX
	case common&ANAR100Half != 0:
		return Link100HDX
	case common&ANAR10Full != 0:
		return Link10FDX
	case common&ANAR10Half != 0:
		return Link10HDX
	default:
		return LinkDown
	}
}
