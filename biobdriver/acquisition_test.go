package biobdriver

import (
	"testing"

	"go-biobase-guidance-driver/guidance"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquisitionPlan(t *testing.T) {
	cfg := AcquisitionConfig{Autocapture: true, SpoofDetection: true, Resolution: 500, Flex: true}
	plan, err := AcquisitionPlan(cfg, guidance.PositionBothThumbs, guidance.ImpressionFlat)
	require.NoError(t, err)
	want := []Property{
		{PropAutocapture, "1"},
		{PropAutocontrast, "1"},
		{PropAutocaptureOverride, "0"},
		{PropSpoofDetection, "1"},
		{PropRequiredObjects, "2"},
		{PropResolution, "500"},
		{PropActiveArea, "-1 -1 1600 1496"},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan (-want +got):\n%s", diff)
	}
}

func planValue(t *testing.T, plan []Property, name string) (string, bool) {
	t.Helper()
	for _, p := range plan {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

func TestAcquisitionPlanActiveArea(t *testing.T) {
	tests := []struct {
		pos        guidance.Position
		imp        guidance.Impression
		resolution int
		want       string
	}{
		{guidance.PositionRightIndex, guidance.ImpressionRoll, 500, "-1 -1 800 748"},
		{guidance.PositionRightFourFingers, guidance.ImpressionFlat, 1000, "-1 -1 3200 3000"},
		{guidance.PositionBothIndexesAndMiddles, guidance.ImpressionFlat, 500, "-1 -1 1600 1496"},
		{guidance.PositionTwoFingers, guidance.ImpressionFlat, 1000, "0 0 0 0"},
		{guidance.PositionLeftIndexAndMiddle, guidance.ImpressionFlat, 500, "0 0 0 0"},
		{guidance.PositionLeftLowerPalm, guidance.ImpressionFlat, 500, "0 0 0 0"},
		{guidance.PositionRightThumb, guidance.ImpressionRollVertical, 500, "0 0 0 0"},
	}
	for _, tt := range tests {
		cfg := AcquisitionConfig{Autocapture: true, Resolution: tt.resolution, Flex: true}
		plan, err := AcquisitionPlan(cfg, tt.pos, tt.imp)
		require.NoError(t, err)
		got, ok := planValue(t, plan, PropActiveArea)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "%s %s", tt.pos, tt.imp)
	}
}

func TestAcquisitionPlanVerticalRoll(t *testing.T) {
	plan, err := AcquisitionPlan(AcquisitionConfig{Autocapture: true, Resolution: 500},
		guidance.PositionLeftThumb, guidance.ImpressionRollVertical)
	require.NoError(t, err)
	v, _ := planValue(t, plan, PropAutocapture)
	assert.Equal(t, "0", v)
	v, _ = planValue(t, plan, PropAutocontrast)
	assert.Equal(t, "0", v)
	v, _ = planValue(t, plan, PropActiveArea)
	assert.Equal(t, "0 0 0 0", v)
}

func TestAcquisitionPlanClearsAreaWithoutFlex(t *testing.T) {
	cfg := AcquisitionConfig{Autocapture: true, Resolution: 1000}
	for _, imp := range []guidance.Impression{guidance.ImpressionRoll, guidance.ImpressionFlat} {
		plan, err := AcquisitionPlan(cfg, guidance.PositionRightFourFingers, imp)
		require.NoError(t, err)
		v, ok := planValue(t, plan, PropActiveArea)
		require.True(t, ok, "%s", imp)
		assert.Equal(t, "0 0 0 0", v, "%s", imp)
	}
}

func TestAcquisitionPlanUnknownPosition(t *testing.T) {
	_, err := AcquisitionPlan(AcquisitionConfig{Resolution: 500}, "Nose", guidance.ImpressionFlat)
	assert.ErrorIs(t, err, guidance.ErrUnsupportedCombination)
}
