package guidance

import (
	"context"
	"fmt"
)

// Renderer turns the acquisition session into device guidance output.
// There is one implementation per guidance type.
type Renderer interface {
	// RenderGuidance shows what to place for a new acquisition.
	RenderGuidance(ctx context.Context, s *AcquisitionSession) error
	// RenderStatus updates the display after a quality change or a key
	// change.
	RenderStatus(ctx context.Context, s *AcquisitionSession) error
	// RenderFinalStatus shows the outcome of a capture.
	RenderFinalStatus(ctx context.Context, s *AcquisitionSession, status ReturnCode) error
	// Reset returns the device output to its idle state.
	Reset(ctx context.Context) error
}

// AcquisitionCompleter is implemented by renderers that show progress
// between the end of an acquisition and the data becoming available.
type AcquisitionCompleter interface {
	AcquisitionComplete(ctx context.Context, s *AcquisitionSession) error
}

// Stopper is implemented by renderers that must release the display
// before the device is closed.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Refresher is implemented by renderers that can re-send their last
// output, for example after the templates on disk changed.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// NewRenderer returns the renderer for g. templatesDir is only used by
// touch display devices.
func NewRenderer(g GuidanceType, enc *Encoder, templatesDir string) (Renderer, error) {
	switch g {
	case GuidanceNone:
		return noneRenderer{}, nil
	case GuidanceLScan:
		return &lscanRenderer{enc: enc}, nil
	case GuidanceStatusLED:
		return &statusLEDRenderer{enc: enc}, nil
	case GuidanceTFT, GuidanceTFT1000:
		return newTFTRenderer(enc), nil
	case GuidanceTouchDisplay:
		return &touchRenderer{enc: enc, dir: templatesDir}, nil
	}
	return nil, fmt.Errorf("unknown guidance type %d", int(g))
}
