package yt9215

// Register map. Field helpers place a value into its field without
// range checking; callers validate beforehand.

const (
	regResetCtrl = 0x80000
	resetHW      = 1 << 31
	resetSW      = 1 << 1

	regFuncCtrl = 0x80004
	funcMIB     = 1 << 1

	regChipID     = 0x80008
	chipIDMask    = 0xffff0000
	chipIDYT9215  = 0x90020000
	regLookupSVID = 0x80014 // PORT_IGR_LOOKUP_SVLAN

	regExtIfCtrl    = 0x80028
	extIf0Enable    = 1 << 0
	extIf1Enable    = 1 << 1
	regExtIfSel     = 0x80394
	extIf0SelMask   = 1 << 1
	extIf0SelSerDes = 0 << 1
	extIf1SelMask   = 1 << 0
	extIf1SelXMII   = 1 << 0
)

func regSGMIICtrl(n int) uint32 { return 0x8008c + 4*uint32(n) }

const (
	sgmiiModeMask      = 7 << 7
	sgmiiModeSGMIIMAC  = 0 << 7
	sgmiiModeSGMIIPHY  = 1 << 7
	sgmiiMode1000BaseX = 2 << 7
	sgmiiMode100BaseX  = 3 << 7
	sgmiiMode2500BaseX = 4 << 7
	sgmiiLink          = 1 << 4
	sgmiiDuplexFull    = 1 << 3
	sgmiiSpeedMask     = 7
)

func regPortCtrl(port int) uint32   { return 0x80100 + 4*uint32(port) }
func regPortStatus(port int) uint32 { return 0x80200 + 4*uint32(port) }

// Bits shared by the port control and port status registers.
const (
	portFlowCtrlAN = 1 << 10 // control only
	portLinkAN     = 1 << 9  // control only
	portLink       = 1 << 8  // status only
	portDuplexFull = 1 << 7
	portRxFlowCtrl = 1 << 6
	portTxFlowCtrl = 1 << 5
	portRxMACEn    = 1 << 4
	portTxMACEn    = 1 << 3
	portSpeedMask  = 7
)

// Port MAC and SerDes speed field encodings.
const (
	speedField10   = 0
	speedField100  = 1
	speedField1000 = 2
	speedField2500 = 4
)

const (
	regMIBCtrl         = 0xc0004
	mibOpClean         = 1 << 30
	mibPortMask        = 0xf << 3
	mibPortSelMask     = 3
	mibPortSelAll      = 0
	mibPortSelSingle   = 2
	mibBase            = 0xc0100
	mibPortStride      = 0x100
	mibCountersPerPort = mibPortStride / 4
)

func regMIBData(port, offset int) uint32 {
	return mibBase + mibPortStride*uint32(port) + 4*uint32(offset)
}

const (
	regIntOP      = 0xf0000
	intOpIdle     = 0
	intOpDo       = 1
	regIntCtrl    = 0xf0004
	intAddrMask   = 0x1f << 21
	intRegMask    = 0x1f << 16
	intOpMask     = 3 << 2
	intOpWrite    = 1 << 2
	intOpRead     = 2 << 2
	regIntWData   = 0xf0008
	regIntRData   = 0xf000c
	intAddrShift  = 21
	intRegShift   = 16
	intDataMask16 = 0xffff
)

func regPortEgrCtrl(port int) uint32 { return 0x100000 + 4*uint32(port) }

const (
	egrCTagTPIDSelMask = 3 << 4
	egrSTagTPIDSelMask = 3 << 2
)

func egrCTagTPIDSel(idx uint32) uint32 { return idx << 4 & egrCTagTPIDSelMask }

func regPortEgrVLAN(port int) uint32 { return 0x100080 + 4*uint32(port) }

// Egress tag modes, shared by the S-tag and C-tag fields.
const (
	egrModeUntag         = 0
	egrModeTag           = 1
	egrModeTagExceptPVID = 2
	egrModePrioTag       = 3
	egrModeKeep          = 4
	egrModeLookup        = 5
)

const (
	egrSTagModeShift = 27
	egrSTagModeMask  = 7 << egrSTagModeShift
	egrPVIDSVIDMask  = 0xfff << 15
	egrCTagModeShift = 12
	egrCTagModeMask  = 7 << egrCTagModeShift
	egrPVIDCVIDMask  = 0xfff
)

func regEgrTPID(idx int) uint32 { return 0x100300 + 4*uint32(idx) }

const (
	regPortIgrVLANFilter = 0x180280
	regPortEgrVLANFilter = 0x180598
)

func regVLANCtrl1(vid int) uint32 { return 0x188000 + 8*uint32(vid) }
func regVLANCtrl2(vid int) uint32 { return 0x188004 + 8*uint32(vid) }

const (
	vlanMemberShift = 7
	vlanMemberMask  = portMask << vlanMemberShift
	vlanUntagShift  = 8
	vlanUntagMask   = portMask << vlanUntagShift
)

func regIgrTPID(idx int) uint32     { return 0x210000 + 4*uint32(idx) }
func regPortIgrTPID(port int) uint32 { return 0x210010 + 4*uint32(port) }

const (
	igrSTagBitmapShift = 4
	igrSTagBitmapMask  = 0xf << igrSTagBitmapShift
	igrCTagBitmapMask  = 0xf
)

func regPortIgrPVID(port int) uint32 { return 0x230010 + 4*uint32(port) }

const (
	igrSVIDShift = 18
	igrSVIDMask  = 0xfff << igrSVIDShift
	igrCVIDShift = 6
	igrCVIDMask  = 0xfff << igrCVIDShift
)

const (
	tpid8021Q  = 0x8100
	tpid8021AD = 0x88a8
	// portMask has one bit set per switch port.
	portMask = 1<<NumPorts - 1
)
