package guidance

import "context"

// noneRenderer serves devices without guidance output.
type noneRenderer struct{}

func (noneRenderer) RenderGuidance(context.Context, *AcquisitionSession) error { return nil }

func (noneRenderer) RenderStatus(context.Context, *AcquisitionSession) error { return nil }

func (noneRenderer) RenderFinalStatus(context.Context, *AcquisitionSession, ReturnCode) error {
	return nil
}

func (noneRenderer) Reset(context.Context) error { return nil }
