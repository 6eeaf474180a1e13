package guidance

// Tier is the classification band of a quality code.
type Tier int

const (
	TierUnknown Tier = iota
	TierError
	TierNotOK
	TierOK
)

func (t Tier) String() string {
	switch t {
	case TierUnknown:
		return "unknown"
	case TierError:
		return "error"
	case TierNotOK:
		return "not_ok"
	case TierOK:
		return "ok"
	}
	return "invalid"
}

// Classify maps a quality code to its UI color and LED tier. Codes that
// are not part of the known table are red.
func Classify(q QualityState) (Color, Tier) {
	switch q {
	case QualityNotPresent:
		return ColorGray, TierUnknown
	case QualityTooLight, QualityTooDark, QualityBadShape:
		return ColorRed, TierError
	case QualityPositionNotOK, QualityCoreNotPresent, QualityTrackingNotOK,
		QualityPositionTooHigh, QualityPositionTooLeft, QualityPositionTooRight, QualityPositionTooLow,
		QualityFlexPositionTooHigh, QualityFlexPositionTooLeft, QualityFlexPositionTooRight, QualityFlexPositionTooLow,
		QualityOcclusion, QualityConfusion,
		QualityRotatedClockwise, QualityRotatedCounterclockwise:
		return ColorYellow, TierNotOK
	case QualityGood:
		return ColorGreen, TierOK
	}
	return ColorRed, TierError
}

// QualityLEDs returns the LED tokens of the tier q falls into.
func QualityLEDs(q QualityState, t LEDTargets) []LED {
	_, tier := Classify(q)
	var leds []LED
	switch tier {
	case TierUnknown:
		leds = t.Unknown
	case TierError:
		leds = t.Error
	case TierNotOK:
		leds = t.NotOK
	case TierOK:
		leds = t.OK
	}
	return append([]LED(nil), leds...)
}

// Indicators returns n UI indicator colors for the given qualities. Slots
// without a reported quality are gray.
func Indicators(qualities []QualityState, n int) []Color {
	out := make([]Color, n)
	for i := range out {
		out[i] = ColorGray
		if i < len(qualities) {
			out[i], _ = Classify(qualities[i])
		}
	}
	return out
}
