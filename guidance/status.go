package guidance

import (
	"fmt"
	"strings"
)

// ReturnCode is the signed result code of a vendor call or a capture.
// Negative codes are failures, positive codes are warnings. Roll and spoof
// warnings are bit flags and may be combined in one data status.
type ReturnCode int32

const (
	Success ReturnCode = 0

	OpticsSurfaceDirty              ReturnCode = 1
	ReplacePad                      ReturnCode = 2
	ObjectOnPlatenDuringCalibration ReturnCode = 3

	RollShiftedHorizontally ReturnCode = 0x0100
	RollShiftedVertically   ReturnCode = 0x0200
	RollLiftedTip           ReturnCode = 0x0400
	RollOnBorder            ReturnCode = 0x0800
	RollPaused              ReturnCode = 0x1000
	RollFingerTooNarrow     ReturnCode = 0x2000
	SpoofDetected           ReturnCode = 0x4000
	SpoofDetectorFail       ReturnCode = 0x8000

	GeneralError            ReturnCode = -1
	InvalidParameter        ReturnCode = -2
	DeviceNotOpened         ReturnCode = -3
	Timeout                 ReturnCode = -4
	BadScan                 ReturnCode = -20
	NoCaptureActive         ReturnCode = -21
	AutocaptureSegmentation ReturnCode = -22
	NoObject                ReturnCode = -23
)

var rollFlags = []ReturnCode{
	RollShiftedHorizontally,
	RollShiftedVertically,
	RollLiftedTip,
	RollOnBorder,
	RollPaused,
	RollFingerTooNarrow,
}

var warningFlags = append(append([]ReturnCode{}, rollFlags...), SpoofDetected, SpoofDetectorFail)

var returnCodeNames = map[ReturnCode]string{
	Success:                         "SUCCESS",
	OpticsSurfaceDirty:              "OPTICS_SURFACE_DIRTY",
	ReplacePad:                      "REPLACE_PAD",
	ObjectOnPlatenDuringCalibration: "OBJECT_ON_PLATEN_DURING_CALIBRATION",
	RollShiftedHorizontally:         "ROLL_SHIFTED_HORIZONTALLY",
	RollShiftedVertically:           "ROLL_SHIFTED_VERTICALLY",
	RollLiftedTip:                   "ROLL_LIFTED_TIP",
	RollOnBorder:                    "ROLL_ON_BORDER",
	RollPaused:                      "ROLL_PAUSED",
	RollFingerTooNarrow:             "ROLL_FINGER_TOO_NARROW",
	SpoofDetected:                   "SPOOF_DETECTED",
	SpoofDetectorFail:               "SPOOF_DETECTOR_FAIL",
	GeneralError:                    "ERROR",
	InvalidParameter:                "INVALID_PARAMETER",
	DeviceNotOpened:                 "DEVICE_NOT_OPENED",
	Timeout:                         "TIMEOUT",
	BadScan:                         "BAD_SCAN",
	NoCaptureActive:                 "NO_CAPTURE_ACTIVE",
	AutocaptureSegmentation:         "AUTOCAPTURE_SEGMENTATION",
	NoObject:                        "NO_OBJECT",
}

func (c ReturnCode) String() string {
	if s, ok := returnCodeNames[c]; ok {
		return s
	}
	if c > 0 {
		if flags := c.Flags(); len(flags) > 0 {
			names := make([]string, len(flags))
			for i, f := range flags {
				names[i] = returnCodeNames[f]
			}
			return strings.Join(names, "|")
		}
	}
	return fmt.Sprintf("ReturnCode(%d)", int32(c))
}

func (c ReturnCode) IsWarning() bool { return c > 0 }
func (c ReturnCode) IsFailure() bool { return c < 0 }

// Has reports whether the warning flag f is set in c.
func (c ReturnCode) Has(f ReturnCode) bool {
	return c > 0 && c&f == f
}

// HasRollWarning reports whether any roll warning bit is set.
func (c ReturnCode) HasRollWarning() bool {
	for _, f := range rollFlags {
		if c.Has(f) {
			return true
		}
	}
	return false
}

// Flags lists the roll and spoof warning bits set in c.
func (c ReturnCode) Flags() []ReturnCode {
	var out []ReturnCode
	for _, f := range warningFlags {
		if c.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
