package guidance

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplates = "/opt/biobase/templates"

func params(kv ...string) []ExternalParameter {
	return fingers(kv...)
}

func TestTouchFlatLayouts(t *testing.T) {
	tests := []struct {
		pos      Position
		initial  string
		standard string
		params   []ExternalParameter
	}{
		{
			pos: PositionRightIndexAndMiddle, initial: TemplateInitialRight, standard: TemplateStandardRight,
			params: params("ButtonRetry", "2", "ButtonConfirm", "1", "FP2", "1", "FP3", "1", "FP4", "0", "FP5", "0"),
		},
		{
			pos: PositionLeftLittle, initial: TemplateInitialLeft, standard: TemplateStandardLeft,
			params: params("ButtonRetry", "2", "ButtonConfirm", "1", "FP7", "0", "FP8", "0", "FP9", "0", "FP10", "1"),
		},
		{
			pos: PositionBothThumbs, initial: TemplateInitialThumbs, standard: TemplateStandardThumbs,
			params: params("ButtonRetry", "2", "ButtonConfirm", "1", "FP1", "1", "FP6", "1"),
		},
		{
			pos: PositionTwoFingers, initial: TemplateInitialFour, standard: TemplateStandardFour,
			params: params("ButtonRetry", "2", "ButtonConfirm", "1", "FP2", "1", "FP3", "0", "FP7", "1", "FP8", "0"),
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			initial, standard, err := TouchLayouts(testTemplates, tt.pos, ImpressionFlat, KeysOKContrast)
			require.NoError(t, err)
			assert.Equal(t, "file:///opt/biobase/templates/"+tt.initial, initial.URI)
			assert.Equal(t, "file:///opt/biobase/templates/"+tt.standard, standard.URI)
			if diff := cmp.Diff(tt.params, []ExternalParameter(initial.Params)); diff != "" {
				t.Errorf("initial params (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(initial.Params, standard.Params); diff != "" {
				t.Errorf("standard params differ from initial:\n%s", diff)
			}
		})
	}
}

func TestTouchRollLayout(t *testing.T) {
	initial, _, err := TouchLayouts(testTemplates, PositionLeftRing, ImpressionRoll, KeysOKContrast)
	require.NoError(t, err)
	assert.Equal(t, "file:///opt/biobase/templates/index_roll.html", initial.URI)
	assert.Equal(t, Params{{Key: "HP2", Value: "1"}, {Key: "FP9", Value: "2"}}, initial.Params)

	initial, _, err = TouchLayouts(testTemplates, PositionRightThumb, ImpressionRoll, KeysOKContrast)
	require.NoError(t, err)
	assert.Equal(t, Params{{Key: "HP1", Value: "1"}, {Key: "FP1", Value: "2"}}, initial.Params)
}

func TestTouchUnsupported(t *testing.T) {
	for _, c := range []struct {
		pos Position
		imp Impression
	}{
		{PositionRightFullPalm, ImpressionFlat},
		{PositionRightFourFingers, ImpressionRoll},
		{PositionRightIndex, ImpressionRollVertical},
		{"RightSixthFinger", ImpressionFlat},
	} {
		_, _, err := TouchLayouts(testTemplates, c.pos, c.imp, KeysNone)
		assert.ErrorIs(t, err, ErrUnsupportedCombination, "%s %s", c.pos, c.imp)
	}
}

func TestTouchRendererFlow(t *testing.T) {
	ctx := context.Background()
	r, port := newTestRenderer(t, GuidanceTouchDisplay)

	require.NoError(t, r.Reset(ctx))
	assert.Equal(t, "file:///opt/biobase/templates/index_standby.html", port.last(t).Output.TouchDisplay.Template.URI)

	s := session(PositionRightThumb, ImpressionFlat, KeysOKContrast)
	require.NoError(t, r.RenderGuidance(ctx, s))
	assert.Equal(t, "file:///opt/biobase/templates/index_initial_thumbs.html", port.last(t).Output.TouchDisplay.Template.URI)

	s.Keys = KeysAcceptRecapture
	require.NoError(t, r.RenderStatus(ctx, s))
	tmpl := port.last(t).Output.TouchDisplay.Template
	assert.Equal(t, "file:///opt/biobase/templates/index_standard_thumbs.html", tmpl.URI)
	got := Params(tmpl.Params)
	retry, _ := got.Get(ParamButtonRetry)
	confirm, _ := got.Get(ParamButtonConfirm)
	assert.Equal(t, "1", retry)
	assert.Equal(t, "1", confirm)

	require.NoError(t, r.RenderFinalStatus(ctx, s, OpticsSurfaceDirty))
	result, ok := Params(port.last(t).Output.TouchDisplay.Template.Params).Get(ParamResult)
	require.True(t, ok)
	assert.Equal(t, "3", result)

	require.NoError(t, r.(Refresher).Refresh(ctx))
	docs := port.docs(t)
	assert.Equal(t, docs[len(docs)-2], docs[len(docs)-1])

	require.NoError(t, r.(Stopper).Stop(ctx))
	assert.Nil(t, port.last(t).Output.TouchDisplay.Template)
	assert.Error(t, r.RenderStatus(ctx, s))
}

func TestTouchResult(t *testing.T) {
	assert.Equal(t, "1", TouchResult(Success))
	assert.Equal(t, "9", TouchResult(ReplacePad))
	assert.Equal(t, "2", TouchResult(NoObject))
}

func TestTemplateURI(t *testing.T) {
	assert.Equal(t, "file:///templates/index_roll.html", TemplateURI("/templates", TemplateRoll))
	assert.Equal(t, "file:///srv/t/index_roll.html", TemplateURI("/srv/t/", TemplateRoll))
}
