package guidance

import (
	"fmt"
	"strings"
)

// GuidanceType selects the rendering strategy of an opened device. It is
// read once when the device is opened.
type GuidanceType int

const (
	GuidanceNone GuidanceType = iota
	GuidanceLScan
	GuidanceStatusLED
	GuidanceTFT
	GuidanceTFT1000
	GuidanceTouchDisplay
)

var guidanceTypeNames = map[GuidanceType]string{
	GuidanceNone:         "none",
	GuidanceLScan:        "lscan",
	GuidanceStatusLED:    "statusled",
	GuidanceTFT:          "tft",
	GuidanceTFT1000:      "tft1000",
	GuidanceTouchDisplay: "touch",
}

func (g GuidanceType) String() string {
	if s, ok := guidanceTypeNames[g]; ok {
		return s
	}
	return fmt.Sprintf("GuidanceType(%d)", int(g))
}

func ParseGuidanceType(s string) (GuidanceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for g, name := range guidanceTypeNames {
		if name == s {
			return g, nil
		}
	}
	return GuidanceNone, fmt.Errorf("unknown guidance type %q", s)
}

// QualityState is the per-object quality code reported by the device on
// every quality event.
type QualityState int

const (
	QualityGood QualityState = iota
	QualityNotPresent
	QualityTooLight
	QualityTooDark
	QualityBadShape
	QualityPositionNotOK
	QualityCoreNotPresent
	QualityTrackingNotOK
	QualityPositionTooHigh
	QualityPositionTooLeft
	QualityPositionTooRight
	QualityPositionTooLow
	QualityFlexPositionTooHigh
	QualityFlexPositionTooLeft
	QualityFlexPositionTooRight
	QualityFlexPositionTooLow
	QualityOcclusion
	QualityConfusion
	QualityRotatedClockwise
	QualityRotatedCounterclockwise
)

var qualityNames = map[QualityState]string{
	QualityGood:                    "good",
	QualityNotPresent:              "not_present",
	QualityTooLight:                "too_light",
	QualityTooDark:                 "too_dark",
	QualityBadShape:                "bad_shape",
	QualityPositionNotOK:           "position_not_ok",
	QualityCoreNotPresent:          "core_not_present",
	QualityTrackingNotOK:           "tracking_not_ok",
	QualityPositionTooHigh:         "position_too_high",
	QualityPositionTooLeft:         "position_too_left",
	QualityPositionTooRight:        "position_too_right",
	QualityPositionTooLow:          "position_too_low",
	QualityFlexPositionTooHigh:     "flex_position_too_high",
	QualityFlexPositionTooLeft:     "flex_position_too_left",
	QualityFlexPositionTooRight:    "flex_position_too_right",
	QualityFlexPositionTooLow:      "flex_position_too_low",
	QualityOcclusion:               "occlusion",
	QualityConfusion:               "confusion",
	QualityRotatedClockwise:        "rotated_clockwise",
	QualityRotatedCounterclockwise: "rotated_counterclockwise",
}

func (q QualityState) String() string {
	if s, ok := qualityNames[q]; ok {
		return s
	}
	return fmt.Sprintf("QualityState(%d)", int(q))
}

// ParseQualityState accepts either a quality name or its numeric code.
func ParseQualityState(s string) (QualityState, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for q, name := range qualityNames {
		if name == s {
			return q, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil {
		return QualityState(n), nil
	}
	return 0, fmt.Errorf("unknown quality state %q", s)
}

func (q QualityState) isFlex() bool {
	switch q {
	case QualityFlexPositionTooHigh, QualityFlexPositionTooLeft,
		QualityFlexPositionTooRight, QualityFlexPositionTooLow:
		return true
	}
	return false
}

// ActiveKeys tells which two conceptual buttons are meaningful on the
// device input surface.
type ActiveKeys int

const (
	KeysNone ActiveKeys = iota
	KeysOKContrast
	KeysAcceptRecapture
)

func (k ActiveKeys) String() string {
	switch k {
	case KeysNone:
		return "none"
	case KeysOKContrast:
		return "ok_contrast"
	case KeysAcceptRecapture:
		return "accept_recapture"
	}
	return fmt.Sprintf("ActiveKeys(%d)", int(k))
}

func ParseActiveKeys(s string) (ActiveKeys, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KeysNone, nil
	case "ok_contrast":
		return KeysOKContrast, nil
	case "accept_recapture":
		return KeysAcceptRecapture, nil
	}
	return KeysNone, fmt.Errorf("unknown active keys %q", s)
}

// Position is the anatomical placement being captured.
type Position string

const (
	PositionUnknown               Position = "Unknown"
	PositionRightThumb            Position = "RightThumb"
	PositionRightIndex            Position = "RightIndex"
	PositionRightMiddle           Position = "RightMiddle"
	PositionRightRing             Position = "RightRing"
	PositionRightLittle           Position = "RightLittle"
	PositionLeftThumb             Position = "LeftThumb"
	PositionLeftIndex             Position = "LeftIndex"
	PositionLeftMiddle            Position = "LeftMiddle"
	PositionLeftRing              Position = "LeftRing"
	PositionLeftLittle            Position = "LeftLittle"
	PositionRightFourFingers      Position = "RightFourFingers"
	PositionLeftFourFingers       Position = "LeftFourFingers"
	PositionBothThumbs            Position = "BothThumbs"
	PositionBothIndexesAndMiddles Position = "BothIndexesAndMiddles"
	PositionTwoFingers            Position = "TwoFingers"
	PositionRightIndexAndMiddle   Position = "RightIndexAndMiddle"
	PositionRightRingAndLittle    Position = "RightRingAndLittle"
	PositionLeftIndexAndMiddle    Position = "LeftIndexAndMiddle"
	PositionLeftRingAndLittle     Position = "LeftRingAndLittle"
	PositionRightFullPalm         Position = "RightFullPalm"
	PositionRightWritersPalm      Position = "RightWritersPalm"
	PositionRightLowerPalm        Position = "RightLowerPalm"
	PositionRightUpperPalm        Position = "RightUpperPalm"
	PositionLeftFullPalm          Position = "LeftFullPalm"
	PositionLeftWritersPalm       Position = "LeftWritersPalm"
	PositionLeftLowerPalm         Position = "LeftLowerPalm"
	PositionLeftUpperPalm         Position = "LeftUpperPalm"
)

// Impression is the capture mode.
type Impression string

const (
	ImpressionUnknown      Impression = "Unknown"
	ImpressionFlat         Impression = "Flat"
	ImpressionRoll         Impression = "Roll"
	ImpressionRollVertical Impression = "RollVertical"
)

// Color is the operator UI indicator color of one detected object.
type Color string

const (
	ColorGray   Color = "gray"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
)
