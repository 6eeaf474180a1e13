package guidance

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedCombination is returned when a position/impression pair
// has no guidance for the device. Nothing is transmitted in that case.
var ErrUnsupportedCombination = errors.New("unsupported position/impression combination")

func unsupported(p Position, imp Impression, g GuidanceType) error {
	return fmt.Errorf("%w: %s %s on %s", ErrUnsupportedCombination, p, imp, g)
}

type hand int

const (
	handNone hand = iota
	handRight
	handLeft
)

// segmentMark sets one TFT segment for a position.
type segmentMark struct {
	seg   Segment
	state SegmentState
}

func marks(state SegmentState, segs ...Segment) []segmentMark {
	out := make([]segmentMark, len(segs))
	for i, s := range segs {
		out[i] = segmentMark{seg: s, state: state}
	}
	return out
}

// flatLayout is the flat-capture touch layout of a position.
type flatLayout struct {
	initial  string
	standard string
	params   Params
}

func fingers(values ...string) Params {
	var p Params
	for i := 0; i+1 < len(values); i += 2 {
		p = append(p, ExternalParameter{Key: values[i], Value: values[i+1]})
	}
	return p
}

type positionInfo struct {
	objects int
	palm    bool
	// single finger of one hand
	single   bool
	hand     hand
	icons    []int
	segments []segmentMark
	flat     *flatLayout
	// rollFinger is the FP parameter prompted on the roll template
	rollFinger string
}

var (
	rightFlat = func(p Params) *flatLayout {
		return &flatLayout{initial: TemplateInitialRight, standard: TemplateStandardRight, params: p}
	}
	leftFlat = func(p Params) *flatLayout {
		return &flatLayout{initial: TemplateInitialLeft, standard: TemplateStandardLeft, params: p}
	}
	thumbsFlat = func(p Params) *flatLayout {
		return &flatLayout{initial: TemplateInitialThumbs, standard: TemplateStandardThumbs, params: p}
	}
	fourFlat = func(p Params) *flatLayout {
		return &flatLayout{initial: TemplateInitialFour, standard: TemplateStandardFour, params: p}
	}
)

var positions = map[Position]positionInfo{
	PositionRightThumb: {
		objects: 1, single: true, hand: handRight, icons: []int{4},
		segments:   marks(SegmentAutocaptureOK, SegRightThumb),
		flat:       thumbsFlat(fingers("FP1", fingerShown, "FP6", fingerHidden)),
		rollFinger: "FP1",
	},
	PositionRightIndex: {
		objects: 1, single: true, hand: handRight, icons: []int{3},
		segments:   marks(SegmentAutocaptureOK, SegRightIndex),
		flat:       rightFlat(fingers("FP2", fingerShown, "FP3", fingerHidden, "FP4", fingerHidden, "FP5", fingerHidden)),
		rollFinger: "FP2",
	},
	PositionRightMiddle: {
		objects: 1, single: true, hand: handRight, icons: []int{3},
		segments:   marks(SegmentAutocaptureOK, SegRightMiddle),
		flat:       rightFlat(fingers("FP2", fingerHidden, "FP3", fingerShown, "FP4", fingerHidden, "FP5", fingerHidden)),
		rollFinger: "FP3",
	},
	PositionRightRing: {
		objects: 1, single: true, hand: handRight, icons: []int{3},
		segments:   marks(SegmentAutocaptureOK, SegRightRing),
		flat:       rightFlat(fingers("FP2", fingerHidden, "FP3", fingerHidden, "FP4", fingerShown, "FP5", fingerHidden)),
		rollFinger: "FP4",
	},
	PositionRightLittle: {
		objects: 1, single: true, hand: handRight, icons: []int{3},
		segments:   marks(SegmentAutocaptureOK, SegRightSmall),
		flat:       rightFlat(fingers("FP2", fingerHidden, "FP3", fingerHidden, "FP4", fingerHidden, "FP5", fingerShown)),
		rollFinger: "FP5",
	},
	PositionLeftThumb: {
		objects: 1, single: true, hand: handLeft, icons: []int{2},
		segments:   marks(SegmentAutocaptureOK, SegLeftThumb),
		flat:       thumbsFlat(fingers("FP1", fingerHidden, "FP6", fingerShown)),
		rollFinger: "FP6",
	},
	PositionLeftIndex: {
		objects: 1, single: true, hand: handLeft, icons: []int{1},
		segments:   marks(SegmentAutocaptureOK, SegLeftIndex),
		flat:       leftFlat(fingers("FP7", fingerShown, "FP8", fingerHidden, "FP9", fingerHidden, "FP10", fingerHidden)),
		rollFinger: "FP7",
	},
	PositionLeftMiddle: {
		objects: 1, single: true, hand: handLeft, icons: []int{1},
		segments:   marks(SegmentAutocaptureOK, SegLeftMiddle),
		flat:       leftFlat(fingers("FP7", fingerHidden, "FP8", fingerShown, "FP9", fingerHidden, "FP10", fingerHidden)),
		rollFinger: "FP8",
	},
	PositionLeftRing: {
		objects: 1, single: true, hand: handLeft, icons: []int{1},
		segments:   marks(SegmentAutocaptureOK, SegLeftRing),
		flat:       leftFlat(fingers("FP7", fingerHidden, "FP8", fingerHidden, "FP9", fingerShown, "FP10", fingerHidden)),
		rollFinger: "FP9",
	},
	PositionLeftLittle: {
		objects: 1, single: true, hand: handLeft, icons: []int{1},
		segments:   marks(SegmentAutocaptureOK, SegLeftSmall),
		flat:       leftFlat(fingers("FP7", fingerHidden, "FP8", fingerHidden, "FP9", fingerHidden, "FP10", fingerShown)),
		rollFinger: "FP10",
	},
	PositionRightFourFingers: {
		objects: 4, hand: handRight, icons: []int{3},
		segments: marks(SegmentAutocaptureOK, SegRightIndex, SegRightMiddle, SegRightRing, SegRightSmall),
		flat:     rightFlat(fingers("FP2", fingerShown, "FP3", fingerShown, "FP4", fingerShown, "FP5", fingerShown)),
	},
	PositionLeftFourFingers: {
		objects: 4, hand: handLeft, icons: []int{1},
		segments: marks(SegmentAutocaptureOK, SegLeftIndex, SegLeftMiddle, SegLeftRing, SegLeftSmall),
		flat:     leftFlat(fingers("FP7", fingerShown, "FP8", fingerShown, "FP9", fingerShown, "FP10", fingerShown)),
	},
	PositionBothThumbs: {
		objects: 2, icons: []int{2, 4},
		segments: marks(SegmentAutocaptureOK, SegLeftThumb, SegRightThumb),
		flat:     thumbsFlat(fingers("FP1", fingerShown, "FP6", fingerShown)),
	},
	PositionBothIndexesAndMiddles: {
		objects: 4, icons: []int{1, 3},
		segments: marks(SegmentAutocaptureOK, SegRightIndex, SegRightMiddle, SegLeftIndex, SegLeftMiddle),
		flat:     fourFlat(fingers("FP2", fingerShown, "FP3", fingerShown, "FP7", fingerShown, "FP8", fingerShown)),
	},
	PositionTwoFingers: {
		objects: 2, icons: []int{3},
		segments: marks(SegmentAutocaptureOK, SegRightIndex, SegLeftIndex),
		flat:     fourFlat(fingers("FP2", fingerShown, "FP3", fingerHidden, "FP7", fingerShown, "FP8", fingerHidden)),
	},
	PositionRightIndexAndMiddle: {
		objects: 2, hand: handRight, icons: []int{3},
		segments: marks(SegmentAutocaptureOK, SegRightIndex, SegRightMiddle),
		flat:     rightFlat(fingers("FP2", fingerShown, "FP3", fingerShown, "FP4", fingerHidden, "FP5", fingerHidden)),
	},
	PositionRightRingAndLittle: {
		objects: 2, hand: handRight, icons: []int{3},
		segments: marks(SegmentAutocaptureOK, SegRightRing, SegRightSmall),
		flat:     rightFlat(fingers("FP2", fingerHidden, "FP3", fingerHidden, "FP4", fingerShown, "FP5", fingerShown)),
	},
	PositionLeftIndexAndMiddle: {
		objects: 2, hand: handLeft, icons: []int{1},
		segments: marks(SegmentAutocaptureOK, SegLeftIndex, SegLeftMiddle),
		flat:     leftFlat(fingers("FP7", fingerShown, "FP8", fingerShown, "FP9", fingerHidden, "FP10", fingerHidden)),
	},
	PositionLeftRingAndLittle: {
		objects: 2, hand: handLeft, icons: []int{1},
		segments: marks(SegmentAutocaptureOK, SegLeftRing, SegLeftSmall),
		flat:     leftFlat(fingers("FP7", fingerHidden, "FP8", fingerHidden, "FP9", fingerShown, "FP10", fingerShown)),
	},
	PositionRightFullPalm: {
		objects: 5, palm: true, hand: handRight,
		segments: marks(SegmentAutocaptureOK, SegRightIndex, SegRightMiddle, SegRightRing, SegRightSmall, SegRightPalm, SegRightInterDigital),
	},
	PositionRightWritersPalm: {
		objects: 1, hand: handRight,
		segments: marks(SegmentAutocaptureOK, SegRightThenar),
	},
	PositionRightLowerPalm: {
		objects: 1, hand: handRight,
		segments: append(marks(SegmentAutocaptureOK, SegRightPalm), marks(SegmentMissing, SegRightLowerThenar)...),
	},
	PositionRightUpperPalm: {
		objects: 5, palm: true, hand: handRight,
		segments: marks(SegmentAutocaptureOK, SegRightIndex, SegRightMiddle, SegRightRing, SegRightSmall, SegRightInterDigital),
	},
	PositionLeftFullPalm: {
		objects: 5, palm: true, hand: handLeft,
		segments: marks(SegmentAutocaptureOK, SegLeftIndex, SegLeftMiddle, SegLeftRing, SegLeftSmall, SegLeftPalm, SegLeftInterDigital),
	},
	PositionLeftWritersPalm: {
		objects: 1, hand: handLeft,
		segments: marks(SegmentAutocaptureOK, SegLeftThenar),
	},
	PositionLeftLowerPalm: {
		objects: 1, hand: handLeft,
		segments: append(marks(SegmentAutocaptureOK, SegLeftPalm), marks(SegmentMissing, SegLeftLowerThenar)...),
	},
	PositionLeftUpperPalm: {
		objects: 5, palm: true, hand: handLeft,
		segments: marks(SegmentAutocaptureOK, SegLeftIndex, SegLeftMiddle, SegLeftRing, SegLeftSmall, SegLeftInterDigital),
	},
}

func lookup(p Position) (positionInfo, bool) {
	info, ok := positions[p]
	return info, ok
}

// KnownPosition reports whether p is in the position table.
func KnownPosition(p Position) bool {
	_, ok := positions[p]
	return ok
}

// DefaultObjectCount returns the number of objects expected for p.
func DefaultObjectCount(p Position) (int, error) {
	info, ok := lookup(p)
	if !ok {
		return 0, fmt.Errorf("%w: position %s", ErrUnsupportedCombination, p)
	}
	return info.objects, nil
}

// IndicatorCount returns how many UI indicators the position uses. Palm
// positions show five, everything else four.
func IndicatorCount(p Position) int {
	if info, ok := lookup(p); ok && info.palm {
		return 5
	}
	return 4
}

// IsPalm reports whether p is one of the palm regions.
func IsPalm(p Position) bool {
	return KnownPosition(p) && strings.HasSuffix(string(p), "Palm")
}

// IconLEDs returns the steady green icon LEDs of p. Palm positions have
// no icons on status LED devices.
func IconLEDs(p Position) ([]LED, error) {
	info, ok := lookup(p)
	if !ok || len(info.icons) == 0 {
		return nil, fmt.Errorf("%w: no icon for %s", ErrUnsupportedCombination, p)
	}
	var leds []LED
	for _, i := range info.icons {
		leds = append(leds, steadyIcon(i)...)
	}
	return leds, nil
}

// KeyButtons maps the active keys to the TFT left and right buttons.
func KeyButtons(keys ActiveKeys) (left, right Button) {
	switch keys {
	case KeysOKContrast:
		return ButtonYellowContrast, ButtonGreenOK
	case KeysAcceptRecapture:
		return ButtonYellowRepeat, ButtonYellowOK
	}
	return ButtonErase, ButtonErase
}

// RecaptureStatus is the bottom status shown while the operator decides
// whether to accept or recapture.
func RecaptureStatus(imp Impression) StatBottom {
	if imp == ImpressionRoll {
		return StatBottomRollError
	}
	return StatBottomCaptureError
}

// TopStatus returns the top banner for a capture.
func TopStatus(p Position, imp Impression) StatTop {
	switch imp {
	case ImpressionRoll:
		info, _ := lookup(p)
		if info.single {
			switch info.hand {
			case handRight:
				return StatTopRollHorizontalRight
			case handLeft:
				return StatTopRollHorizontalLeft
			}
		}
		return StatTopRollHorizontal
	case ImpressionRollVertical:
		return StatTopRollVertical
	}
	return StatTopCaptureFlat
}

// GuidanceFields builds the full capture progress frame fields for a new
// acquisition.
func GuidanceFields(p Position, imp Impression, keys ActiveKeys) (FrameFields, error) {
	info, ok := lookup(p)
	if !ok {
		return FrameFields{}, unsupported(p, imp, GuidanceTFT)
	}
	switch imp {
	case ImpressionFlat, ImpressionRoll, ImpressionRollVertical:
	default:
		return FrameFields{}, unsupported(p, imp, GuidanceTFT)
	}
	f := InactiveFields()
	for _, m := range info.segments {
		f.Segments[m.seg] = m.state
	}
	f.StatTop = TopStatus(p, imp)
	f.LeftButton, f.RightButton = KeyButtons(keys)
	if keys == KeysAcceptRecapture {
		f.StatBottom = RecaptureStatus(imp)
	}
	return f, nil
}

// PositionStatus derives the bottom status from the position hints in
// the most recent qualities.
func PositionStatus(qualities []QualityState) StatBottom {
	var tooHigh, tooLeft, tooRight, flex bool
	for _, q := range qualities {
		switch {
		case q == QualityPositionTooHigh:
			tooHigh = true
		case q == QualityPositionTooLeft:
			tooLeft = true
		case q == QualityPositionTooRight:
			tooRight = true
		case q.isFlex():
			flex = true
		}
	}
	switch {
	case (tooHigh && tooLeft && tooRight) || flex:
		return StatBottomPositionDownLeftRightUp
	case tooHigh && tooLeft:
		return StatBottomPositionDownRight
	case tooHigh && tooRight:
		return StatBottomPositionDownLeft
	case tooRight && tooLeft:
		return StatBottomPositionLeftRight
	case tooRight:
		return StatBottomPositionLeft
	case tooLeft:
		return StatBottomPositionRight
	case tooHigh:
		return StatBottomPositionDown
	}
	return StatBottomErase
}

// FinalStatus maps a final data status to the TFT bottom status.
func FinalStatus(status ReturnCode) StatBottom {
	switch status {
	case Success:
		return StatBottomOK
	case OpticsSurfaceDirty:
		return StatBottomSurfaceIsDirty
	case ReplacePad:
		return StatBottomSurfaceIsDirtyAlt1
	case BadScan, NoCaptureActive:
		return StatBottomCaptureError
	case AutocaptureSegmentation:
		return StatBottomQualityCheckError
	case NoObject, SpoofDetected, SpoofDetectorFail:
		return StatBottomSequenceCheckErrorAlt1
	}
	if status.HasRollWarning() {
		return StatBottomRollError
	}
	return StatBottomCommonError
}

// TouchLayouts returns the initial and standard touch templates for a
// new acquisition. The standard parameters start as a copy of the
// initial ones.
func TouchLayouts(dir string, p Position, imp Impression, keys ActiveKeys) (initial, standard TouchTemplate, err error) {
	info, ok := lookup(p)
	if !ok {
		return initial, standard, unsupported(p, imp, GuidanceTouchDisplay)
	}
	switch imp {
	case ImpressionFlat:
		if info.flat == nil {
			return initial, standard, unsupported(p, imp, GuidanceTouchDisplay)
		}
		retry, confirm := touchButtons(keys)
		params := Params{
			{Key: ParamButtonRetry, Value: retry},
			{Key: ParamButtonConfirm, Value: confirm},
		}
		params = append(params, info.flat.params.Clone()...)
		initial = TouchTemplate{URI: TemplateURI(dir, info.flat.initial), Params: params}
		standard = TouchTemplate{URI: TemplateURI(dir, info.flat.standard), Params: params.Clone()}
		return initial, standard, nil
	case ImpressionRoll:
		if info.rollFinger == "" {
			return initial, standard, unsupported(p, imp, GuidanceTouchDisplay)
		}
		handParam := "HP1"
		if info.hand == handLeft {
			handParam = "HP2"
		}
		params := Params{
			{Key: handParam, Value: "1"},
			{Key: info.rollFinger, Value: fingerRolling},
		}
		uri := TemplateURI(dir, TemplateRoll)
		initial = TouchTemplate{URI: uri, Params: params}
		standard = TouchTemplate{URI: uri, Params: params.Clone()}
		return initial, standard, nil
	}
	return initial, standard, unsupported(p, imp, GuidanceTouchDisplay)
}

// Prompt is the operator overlay text shown when an acquisition starts.
func Prompt(p Position, imp Impression) string {
	switch imp {
	case ImpressionRoll:
		return "Roll finger horizontally!"
	case ImpressionRollVertical:
		return "Roll finger vertically!"
	case ImpressionFlat:
		return "Place " + string(p) + "!"
	}
	return "Place fingers on platen."
}
