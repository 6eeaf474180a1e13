package biobdriver

import (
	"strconv"

	"go-biobase-guidance-driver/guidance"
)

// Device property names understood by the gateway.
const (
	PropAutocapture         = "autocapture"
	PropAutocontrast        = "autocontrast"
	PropAutocaptureOverride = "autocapture_override"
	PropSpoofDetection      = "spoof_detection"
	PropRequiredObjects     = "required_objects"
	PropResolution          = "resolution"
	PropActiveArea          = "flex_active_area"
)

const (
	areaNone       = "0 0 0 0"
	areaFlexRoll   = "-1 -1 800 748"
	areaFlexFlat1k = "-1 -1 3200 3000"
	areaFlexFlat   = "-1 -1 1600 1496"
)

type Property struct {
	Name  string
	Value string
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// AcquisitionPlan returns the properties to write before an acquisition
// of pos with imp.
func AcquisitionPlan(cfg AcquisitionConfig, pos guidance.Position, imp guidance.Impression) ([]Property, error) {
	objects, err := guidance.DefaultObjectCount(pos)
	if err != nil {
		return nil, err
	}
	autocapture := cfg.Autocapture
	if imp == guidance.ImpressionRollVertical {
		autocapture = false
	}
	plan := []Property{
		{PropAutocapture, flag(autocapture)},
		{PropAutocontrast, flag(imp == guidance.ImpressionFlat)},
		{PropAutocaptureOverride, flag(cfg.AutocaptureOverride)},
		{PropSpoofDetection, flag(cfg.SpoofDetection)},
		{PropRequiredObjects, strconv.Itoa(objects)},
		{PropResolution, strconv.Itoa(cfg.Resolution)},
	}
	// the active area persists on the device, so it is cleared when flex
	// capture is off
	area := areaNone
	if cfg.Flex {
		area = activeArea(pos, imp, cfg.Resolution)
	}
	return append(plan, Property{PropActiveArea, area}), nil
}

func activeArea(pos guidance.Position, imp guidance.Impression, resolution int) string {
	switch imp {
	case guidance.ImpressionRoll:
		return areaFlexRoll
	case guidance.ImpressionFlat:
		if guidance.IsPalm(pos) {
			return areaNone
		}
		switch pos {
		case guidance.PositionTwoFingers,
			guidance.PositionRightIndexAndMiddle, guidance.PositionRightRingAndLittle,
			guidance.PositionLeftIndexAndMiddle, guidance.PositionLeftRingAndLittle:
			return areaNone
		}
		if resolution == 1000 {
			return areaFlexFlat1k
		}
		return areaFlexFlat
	}
	return areaNone
}
