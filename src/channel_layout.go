package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Channel layouts: where the speakers are.
 *
 *		A layout is a count plus a position tag per channel and
 *		a form factor. Positions are drawn from a closed set of
 *		speaker placements. Standard surround layouts are
 *		predefined; anything else can be described by hand.
 *
 *---------------------------------------------------------------*/

// Hard cap on channels per buffer. Every per-channel state array in the
// plugins is sized to this so the common case never touches the heap.
const MaxChannelPositions = 22

type Position uint8

const (
	PosLeftFront Position = iota
	PosCenterFront
	PosRightFront
	PosLeftCenterFront
	PosRightCenterFront
	PosSubwoofer
	PosLeftBack
	PosCenterBack
	PosRightBack
	PosLeftSide
	PosRightSide
	PosCenterTop
	PosLeftFrontTop
	PosCenterFrontTop
	PosRightFrontTop
	PosLeftBackTop
	PosCenterBackTop
	PosRightBackTop
	positionCount
)

var positionStrings = [positionCount]string{
	"Left Front",
	"Center Front",
	"Right Front",
	"Left Center Front",
	"Right Center Front",
	"Subwoofer",
	"Left Back",
	"Center Back",
	"Right Back",
	"Left Side",
	"Right Side",
	"Center Top",
	"Left Front Top",
	"Center Front Top",
	"Right Front Top",
	"Left Back Top",
	"Center Back Top",
	"Right Back Top",
}

func (p Position) String() string {
	if p < positionCount {
		return positionStrings[p]
	}
	return "Invalid Position"
}

// Nominal placement angles in degrees, used for proximity routing.
// Azimuth is measured from front center, positive to the right.
var positionAzimuth = [positionCount]int16{
	-30,  // LeftFront
	0,    // CenterFront
	30,   // RightFront
	-15,  // LeftCenterFront
	15,   // RightCenterFront
	0,    // Subwoofer
	-135, // LeftBack
	180,  // CenterBack
	135,  // RightBack
	-90,  // LeftSide
	90,   // RightSide
	0,    // CenterTop
	-30,  // LeftFrontTop
	0,    // CenterFrontTop
	30,   // RightFrontTop
	-135, // LeftBackTop
	180,  // CenterBackTop
	135,  // RightBackTop
}

var positionElevation = [positionCount]int16{
	0, 0, 0, 0, 0,
	0,
	0, 0, 0,
	0, 0,
	90,
	45, 45, 45,
	45, 45, 45,
}

// Angular distance between two positions in degrees.
func positionDistance(a, b Position) int16 {
	azimuth := positionAzimuth[a] - positionAzimuth[b]
	if azimuth < 0 {
		azimuth = -azimuth
	}
	if azimuth > 180 {
		azimuth = 360 - azimuth
	}
	elevation := positionElevation[a] - positionElevation[b]
	if elevation < 0 {
		elevation = -elevation
	}
	return azimuth + elevation
}

type FormFactor uint8

const (
	FormFactorSpeakers FormFactor = iota
	FormFactorHeadphones
)

type ChannelLayout struct {
	Count      uint8
	FormFactor FormFactor
	Positions  [MaxChannelPositions]Position
}

func makeChannelLayout(positions ...Position) ChannelLayout {
	var result ChannelLayout
	result.Count = uint8(len(positions))
	copy(result.Positions[:], positions)
	return result
}

func ChannelLayoutMono() ChannelLayout {
	return makeChannelLayout(PosCenterFront)
}

func ChannelLayoutStereo() ChannelLayout {
	return makeChannelLayout(PosLeftFront, PosRightFront)
}

func ChannelLayoutHeadphones() ChannelLayout {
	result := ChannelLayoutStereo()
	result.FormFactor = FormFactorHeadphones
	return result
}

func ChannelLayout_2_1() ChannelLayout {
	return makeChannelLayout(PosLeftFront, PosRightFront, PosSubwoofer)
}

func ChannelLayout_5_1() ChannelLayout {
	return makeChannelLayout(PosLeftFront, PosRightFront, PosCenterFront, PosSubwoofer, PosLeftBack, PosRightBack)
}

func ChannelLayout_7_1() ChannelLayout {
	return makeChannelLayout(PosLeftFront, PosRightFront, PosCenterFront, PosSubwoofer, PosLeftBack, PosRightBack, PosLeftSide, PosRightSide)
}

func ChannelLayout_9_1() ChannelLayout {
	return makeChannelLayout(PosLeftFront, PosRightFront, PosCenterFront, PosSubwoofer, PosLeftBack, PosRightBack, PosLeftSide, PosRightSide, PosLeftCenterFront, PosRightCenterFront)
}

// Best-guess layout for a bare channel count, for backends that only
// report how many channels they have.
func ChannelLayoutDefaultFromCount(count uint8) ChannelLayout {
	switch count {
	case 1:
		return ChannelLayoutMono()
	case 2:
		return ChannelLayoutStereo()
	case 3:
		return ChannelLayout_2_1()
	case 6:
		return ChannelLayout_5_1()
	case 8:
		return ChannelLayout_7_1()
	case 10:
		return ChannelLayout_9_1()
	}
	var result ChannelLayout
	result.Count = count
	return result
}

// Returns a mono layout keeping the position of the given channel.
func (layout ChannelLayout) OneChannel(channel uint8) ChannelLayout {
	var result ChannelLayout
	result.Count = 1
	result.FormFactor = layout.FormFactor
	if channel < layout.Count {
		result.Positions[0] = layout.Positions[channel]
	}
	return result
}
