package guidance

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBeeper(t *testing.T) {
	port := &recordingPort{}
	enc := NewEncoder(port)
	require.NoError(t, enc.BeepOK(context.Background()))

	require.Len(t, port.recs, 1)
	rec := port.recs[0]
	assert.Equal(t, FormatXML, rec.Format)
	assert.Equal(t, len(rec.Data), rec.Size)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<BioBase Version="4.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="BioBase.xsd">`+
		`<OutputData><Beeper Pattern="3" Volume="100"></Beeper></OutputData></BioBase>`, string(rec.Data))
}

func TestMarshalRequiresOneCategory(t *testing.T) {
	_, err := Marshal(NewDocument(OutputData{}))
	assert.Error(t, err)

	_, err = Marshal(NewDocument(OutputData{
		Beeper:     &Beeper{Pattern: "1", Volume: "10"},
		StatusLeds: &StatusLeds{},
	}))
	assert.Error(t, err)
}

func TestStatusLEDsAlwaysStartWithNone(t *testing.T) {
	ctx := context.Background()
	port := &recordingPort{}
	enc := NewEncoder(port)

	require.NoError(t, enc.StatusLEDs(ctx))
	require.NoError(t, enc.StatusLEDs(ctx, "S1_GREEN_B1", LEDNone, "S1_GREEN_B2"))

	docs := port.docs(t)
	assert.Equal(t, []LED{LEDNone}, docs[0].Output.StatusLeds.Leds)
	assert.Equal(t, []LED{LEDNone, "S1_GREEN_B1", "S1_GREEN_B2"}, docs[1].Output.StatusLeds.Leds)
}

func TestRenderPathsStartWithNone(t *testing.T) {
	ctx := context.Background()
	for _, g := range []GuidanceType{GuidanceLScan, GuidanceStatusLED} {
		t.Run(g.String(), func(t *testing.T) {
			r, port := newTestRenderer(t, g)
			s := session(PositionLeftFourFingers, ImpressionFlat, KeysOKContrast,
				QualityGood, QualityTooLight, QualityNotPresent, QualityOcclusion)

			require.NoError(t, r.Reset(ctx))
			require.NoError(t, r.RenderGuidance(ctx, s))
			require.NoError(t, r.RenderStatus(ctx, s))
			require.NoError(t, r.RenderFinalStatus(ctx, s, Success))
			require.NoError(t, r.RenderFinalStatus(ctx, s, ReplacePad))
			require.NoError(t, r.RenderFinalStatus(ctx, s, BadScan))

			docs := port.docs(t)
			require.Len(t, docs, 6)
			for i, doc := range docs {
				require.NotNil(t, doc.Output.StatusLeds, "doc %d", i)
				leds := doc.Output.StatusLeds.Leds
				require.NotEmpty(t, leds)
				assert.Equal(t, LEDNone, leds[0], "doc %d", i)
				for _, l := range leds[1:] {
					assert.NotEqual(t, LEDNone, l, "doc %d", i)
				}
			}
		})
	}
}

func TestSendWrapsPortError(t *testing.T) {
	port := &recordingPort{err: errPortDown}
	err := NewEncoder(port).BeepError(context.Background())
	assert.ErrorIs(t, err, errPortDown)
	assert.Contains(t, err.Error(), "Beeper")
}

func TestTouchDocument(t *testing.T) {
	ctx := context.Background()
	port := &recordingPort{}
	enc := NewEncoder(port)

	tmpl := TouchTemplate{
		URI:    TemplateURI("/opt/biobase/templates", TemplateRoll),
		Params: Params{{Key: "HP1", Value: "1"}, {Key: "FP2", Value: "2"}},
	}
	require.NoError(t, enc.Touch(ctx, tmpl))
	require.NoError(t, enc.StopTouch(ctx))

	body := string(port.recs[0].Data)
	assert.Contains(t, body, `<TouchDisplay><DesignTemplate><URI>file:///opt/biobase/templates/index_roll.html</URI>`+
		`<ExternalParameter Key="HP1" Value="1"></ExternalParameter>`+
		`<ExternalParameter Key="FP2" Value="2"></ExternalParameter></DesignTemplate></TouchDisplay>`)

	stop := port.last(t)
	require.NotNil(t, stop.Output.TouchDisplay)
	assert.Nil(t, stop.Output.TouchDisplay.Template)
}

func TestOverlayAndButtons(t *testing.T) {
	ctx := context.Background()
	port := &recordingPort{}
	enc := NewEncoder(port)

	require.NoError(t, enc.Overlay(ctx, "Place fingers on platen."))
	require.NoError(t, enc.ActiveButtons(ctx, KeysNone))
	require.NoError(t, enc.ActiveButtons(ctx, KeysAcceptRecapture))

	docs := port.docs(t)
	require.Len(t, docs, 3)
	assert.Equal(t, "Place fingers on platen.", docs[0].Output.Overlay.Text.Value)
	assert.Equal(t, "FALSE", docs[0].Output.Overlay.Text.BelongsToImage)
	assert.Equal(t, []string{"NONE"}, docs[1].Output.ActiveButtons.Keys)
	assert.Equal(t, []string{"OK", "CANCEL"}, docs[2].Output.ActiveButtons.Keys)
}

func TestLogoScreen(t *testing.T) {
	port := &recordingPort{}
	require.NoError(t, NewEncoder(port).Logo(context.Background()))
	assert.True(t, strings.HasSuffix(string(port.recs[0].Data),
		`<Tft><LogoScreen><Option>SHOW_FW_VERSION</Option><ProgressBarPercent>0</ProgressBarPercent></LogoScreen></Tft></OutputData></BioBase>`))
}

func TestWriterPort(t *testing.T) {
	var sb strings.Builder
	enc := NewEncoder(NewWriterPort(&sb))
	require.NoError(t, enc.Beep(context.Background(), "7", "0"))
	require.NoError(t, enc.StatusLEDs(context.Background()))

	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `<Beeper Pattern="7" Volume="0">`)
	assert.Contains(t, lines[1], `<StatusLeds><Led>NONE</Led></StatusLeds>`)
}
