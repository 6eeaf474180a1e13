package guidance

import (
	"errors"
	"fmt"
)

// Segment is one body segment of the TFT capture progress screen.
type Segment int

const (
	SegLeftPalm Segment = iota
	SegLeftThenar
	SegLeftLowerThenar
	SegLeftInterDigital
	SegLeftThumb
	SegLeftIndex
	SegLeftMiddle
	SegLeftRing
	SegLeftSmall
	SegRightPalm
	SegRightThenar
	SegRightLowerThenar
	SegRightInterDigital
	SegRightThumb
	SegRightIndex
	SegRightMiddle
	SegRightRing
	SegRightSmall

	NumSegments
)

var segmentKeys = [NumSegments]string{
	"ColorLeftPalm",
	"ColorLeftThenar",
	"ColorLeftLowerThenar",
	"ColorLeftInterDigital",
	"ColorLeftThumb",
	"ColorLeftIndex",
	"ColorLeftMiddle",
	"ColorLeftRing",
	"ColorLeftSmall",
	"ColorRightPalm",
	"ColorRightThenar",
	"ColorRightLowerThenar",
	"ColorRightInterDigital",
	"ColorRightThumb",
	"ColorRightIndex",
	"ColorRightMiddle",
	"ColorRightRing",
	"ColorRightSmall",
}

// Key returns the wire element name of the segment.
func (s Segment) Key() string {
	if s < 0 || s >= NumSegments {
		return fmt.Sprintf("Segment(%d)", int(s))
	}
	return segmentKeys[s]
}

const (
	keyLeftButton  = "LeftButton"
	keyRightButton = "RightButton"
	keyStatTop     = "StatTop"
	keyStatBottom  = "StatBottom"
)

// SegmentState is the display state of a segment. The zero value means
// unset: the key is not transmitted.
type SegmentState string

const (
	SegmentUnset            SegmentState = ""
	SegmentInactive         SegmentState = "INACTIVE"
	SegmentActive           SegmentState = "ACTIVE"
	SegmentAutocaptureOK    SegmentState = "AUTOCAPTURE_OK"
	SegmentMissing          SegmentState = "MISSING"
	SegmentCurrentSelection SegmentState = "CURRENT_SELECTION"
	SegmentLeaveUnchanged   SegmentState = "LEAVE_UNCHANGED"
	SegmentRestricted       SegmentState = "RESTRICTED"
)

type Button string

const (
	ButtonUnset          Button = ""
	ButtonErase          Button = "ERASE"
	ButtonYellowOK       Button = "YELLOW_OK"
	ButtonYellowOverride Button = "YELLOW_OVERRIDE"
	ButtonYellowContrast Button = "YELLOW_CONTRAST"
	ButtonYellowRepeat   Button = "YELLOW_REPEAT"
	ButtonGreenOK        Button = "GREEN_OK"
	ButtonGreenOverride  Button = "GREEN_OVERRIDE"
	ButtonGreenContrast  Button = "GREEN_CONTRAST"
	ButtonGreenRepeat    Button = "GREEN_REPEAT"
	ButtonLeaveUnchanged Button = "LEAVE_UNCHANGED"
)

type StatTop string

const (
	StatTopUnset               StatTop = ""
	StatTopErase               StatTop = "ERASE"
	StatTopCaptureFlat         StatTop = "CAPTURE_FLAT"
	StatTopRollHorizontal      StatTop = "ROLL_HORIZONTAL"
	StatTopRollHorizontalLeft  StatTop = "ROLL_HORIZONTAL_LEFT"
	StatTopRollHorizontalRight StatTop = "ROLL_HORIZONTAL_RIGHT"
	StatTopRollVertical        StatTop = "ROLL_VERTICAL"
	StatTopRollVerticalUp      StatTop = "ROLL_VERTICAL_UP"
	StatTopRollVerticalDown    StatTop = "ROLL_VERTICAL_DOWN"
	StatTopLeaveUnchanged      StatTop = "LEAVE_UNCHANGED"
)

type StatBottom string

const (
	StatBottomUnset                   StatBottom = ""
	StatBottomOK                      StatBottom = "OK"
	StatBottomOKAlt1                  StatBottom = "OK_ALT_1"
	StatBottomErase                   StatBottom = "ERASE"
	StatBottomCleanSurface            StatBottom = "CLEAN_SURFACE"
	StatBottomCleanSurfaceAlt1        StatBottom = "CLEAN_SURFACE_ALT_1"
	StatBottomSurfaceIsDirty          StatBottom = "SURFACE_IS_DIRTY"
	StatBottomSurfaceIsDirtyAlt1      StatBottom = "SURFACE_IS_DIRTY_ALT_1"
	StatBottomCommonError             StatBottom = "COMMON_ERROR"
	StatBottomCaptureError            StatBottom = "CAPTURE_ERROR"
	StatBottomCaptureErrorAlt1        StatBottom = "CAPTURE_ERROR_ALT_1"
	StatBottomQualityCheckError       StatBottom = "QUALITY_CHECK_ERROR"
	StatBottomRollError               StatBottom = "ROLL_ERROR"
	StatBottomRollErrorAlt1           StatBottom = "ROLL_ERROR_ALT_1"
	StatBottomRollErrorAlt2           StatBottom = "ROLL_ERROR_ALT_2"
	StatBottomRollErrorAlt3           StatBottom = "ROLL_ERROR_ALT_3"
	StatBottomSequenceCheckError      StatBottom = "SEQUENCE_CHECK_ERROR"
	StatBottomSequenceCheckErrorAlt1  StatBottom = "SEQUENCE_CHECK_ERROR_ALT_1"
	StatBottomPositionUp              StatBottom = "POSITION_UP"
	StatBottomPositionUpRight         StatBottom = "POSITION_UP_RIGHT"
	StatBottomPositionRight           StatBottom = "POSITION_RIGHT"
	StatBottomPositionDownRight       StatBottom = "POSITION_DOWN_RIGHT"
	StatBottomPositionDown            StatBottom = "POSITION_DOWN"
	StatBottomPositionDownLeft        StatBottom = "POSITION_DOWN_LEFT"
	StatBottomPositionLeft            StatBottom = "POSITION_LEFT"
	StatBottomPositionUpLeft          StatBottom = "POSITION_UP_LEFT"
	StatBottomPositionDownLeftRightUp StatBottom = "POSITION_DOWN_LEFT_RIGHT_UP"
	StatBottomPositionLeftRight       StatBottom = "POSITION_LEFT_RIGHT"
	StatBottomHourglassStatic         StatBottom = "HOURGLASS_STATIC"
	StatBottomHourglassAnimated       StatBottom = "HOURGLASS_ANIMATED"
	StatBottomCapturingAnimated       StatBottom = "CAPTURING_ANIMATED"
	StatBottomRollingLeftAnimated     StatBottom = "ROLLING_LEFT_ANIMATED"
	StatBottomRollingRightAnimated    StatBottom = "ROLLING_RIGHT_ANIMATED"
	StatBottomLeaveUnchanged          StatBottom = "LEAVE_UNCHANGED"
	StatBottomCompressionError        StatBottom = "COMPRESSION_ERROR"
	StatBottomSegmentationError       StatBottom = "SEGMENTATION_ERROR"
)

// Screen is a TFT screen layout carrying a segment record.
type Screen int

const (
	ScreenCaptureProgress Screen = iota
	ScreenFingerSelection
)

// Element returns the wire element name of the screen.
func (s Screen) Element() string {
	if s == ScreenFingerSelection {
		return "FingerSelectionScreen"
	}
	return "CaptureProgressScreen"
}

func (s Screen) hasStatus() bool { return s == ScreenCaptureProgress }

var (
	// ErrIncompleteFrame is returned when a full frame has an unset or
	// LEAVE_UNCHANGED field.
	ErrIncompleteFrame = errors.New("tft frame incomplete")
	// ErrPartialFirstFrame is returned when a partial frame would be the
	// first transmission on a screen layout.
	ErrPartialFirstFrame = errors.New("first frame after screen switch must be full")
)

// FrameFields is the plain input of a TFT frame.
type FrameFields struct {
	LeftButton  Button
	RightButton Button
	Segments    [NumSegments]SegmentState
	StatTop     StatTop
	StatBottom  StatBottom
}

// InactiveFields returns fields with every segment inactive and buttons
// and status lines erased.
func InactiveFields() FrameFields {
	f := FrameFields{
		LeftButton:  ButtonErase,
		RightButton: ButtonErase,
		StatTop:     StatTopErase,
		StatBottom:  StatBottomErase,
	}
	for i := range f.Segments {
		f.Segments[i] = SegmentInactive
	}
	return f
}

// Frame is an immutable TFT segment record bound to a screen layout.
type Frame struct {
	screen Screen
	full   bool
	fields FrameFields
}

// NewFullFrame builds a frame that may be sent as the first transmission
// on its screen. Every key must carry an explicit state other than
// LEAVE_UNCHANGED.
func NewFullFrame(screen Screen, f FrameFields) (Frame, error) {
	if err := checkStatusFields(screen, f); err != nil {
		return Frame{}, err
	}
	if f.LeftButton == ButtonUnset || f.LeftButton == ButtonLeaveUnchanged {
		return Frame{}, fmt.Errorf("%w: %s=%q", ErrIncompleteFrame, keyLeftButton, f.LeftButton)
	}
	if f.RightButton == ButtonUnset || f.RightButton == ButtonLeaveUnchanged {
		return Frame{}, fmt.Errorf("%w: %s=%q", ErrIncompleteFrame, keyRightButton, f.RightButton)
	}
	for i, st := range f.Segments {
		if st == SegmentUnset || st == SegmentLeaveUnchanged {
			return Frame{}, fmt.Errorf("%w: %s=%q", ErrIncompleteFrame, Segment(i).Key(), st)
		}
	}
	if screen.hasStatus() {
		if f.StatTop == StatTopUnset || f.StatTop == StatTopLeaveUnchanged {
			return Frame{}, fmt.Errorf("%w: %s=%q", ErrIncompleteFrame, keyStatTop, f.StatTop)
		}
		if f.StatBottom == StatBottomUnset || f.StatBottom == StatBottomLeaveUnchanged {
			return Frame{}, fmt.Errorf("%w: %s=%q", ErrIncompleteFrame, keyStatBottom, f.StatBottom)
		}
	}
	return Frame{screen: screen, full: true, fields: f}, nil
}

// NewPartialFrame builds an update frame. Unset fields are omitted and
// leave the device state unchanged.
func NewPartialFrame(screen Screen, f FrameFields) (Frame, error) {
	if err := checkStatusFields(screen, f); err != nil {
		return Frame{}, err
	}
	return Frame{screen: screen, fields: f}, nil
}

func checkStatusFields(screen Screen, f FrameFields) error {
	if screen.hasStatus() {
		return nil
	}
	if f.StatTop != StatTopUnset || f.StatBottom != StatBottomUnset {
		return fmt.Errorf("%s carries no status lines", screen.Element())
	}
	return nil
}

func (f Frame) Screen() Screen { return f.screen }

// Full reports whether the frame was validated as a first transmission.
func (f Frame) Full() bool { return f.full }

func (f Frame) Segment(s Segment) SegmentState { return f.fields.Segments[s] }

func (f Frame) Buttons() (Button, Button) { return f.fields.LeftButton, f.fields.RightButton }

func (f Frame) StatTop() StatTop { return f.fields.StatTop }

func (f Frame) StatBottom() StatBottom { return f.fields.StatBottom }

// Fields returns a copy of the frame fields.
func (f Frame) Fields() FrameFields { return f.fields }

// Entries returns the transmitted keys in wire order.
func (f Frame) Entries() []KeyValue {
	var out []KeyValue
	add := func(k, v string) {
		if v != "" {
			out = append(out, newKeyValue(k, v))
		}
	}
	add(keyLeftButton, string(f.fields.LeftButton))
	add(keyRightButton, string(f.fields.RightButton))
	for i, st := range f.fields.Segments {
		add(Segment(i).Key(), string(st))
	}
	if f.screen.hasStatus() {
		add(keyStatTop, string(f.fields.StatTop))
		add(keyStatBottom, string(f.fields.StatBottom))
	}
	return out
}

// ApplyEntries overlays decoded wire entries on base. Keys that are not
// part of the segment record are reported as an error.
func ApplyEntries(base FrameFields, entries []KeyValue) (FrameFields, error) {
	out := base
	for _, e := range entries {
		k := e.Key()
		switch k {
		case keyLeftButton:
			out.LeftButton = Button(e.Value)
		case keyRightButton:
			out.RightButton = Button(e.Value)
		case keyStatTop:
			out.StatTop = StatTop(e.Value)
		case keyStatBottom:
			out.StatBottom = StatBottom(e.Value)
		default:
			found := false
			for i, sk := range segmentKeys {
				if sk == k {
					if SegmentState(e.Value) != SegmentLeaveUnchanged {
						out.Segments[i] = SegmentState(e.Value)
					}
					found = true
					break
				}
			}
			if !found {
				return base, fmt.Errorf("unknown tft key %q", k)
			}
		}
	}
	return out, nil
}
