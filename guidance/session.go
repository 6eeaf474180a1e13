package guidance

import (
	"github.com/google/uuid"
)

// AcquisitionSession holds what the renderers need to know about the
// running acquisition. It is owned by the open device and must only be
// touched from the device event loop.
type AcquisitionSession struct {
	ID         uuid.UUID
	Position   Position
	Impression Impression
	Keys       ActiveKeys
	// Qualities are the most recent per-object qualities, at most
	// MaxStatusSlots entries.
	Qualities []QualityState
	// Status is the data status of the last final capture.
	Status ReturnCode
	// AwaitingDecision is set while the operator must accept or recapture.
	AwaitingDecision bool
}

// NewAcquisitionSession returns an idle session.
func NewAcquisitionSession() *AcquisitionSession {
	return &AcquisitionSession{
		Position:   PositionUnknown,
		Impression: ImpressionUnknown,
		Keys:       KeysNone,
	}
}

// Begin starts a new acquisition for p and imp and forgets everything
// recorded for the previous one.
func (s *AcquisitionSession) Begin(p Position, imp Impression) {
	s.ID = uuid.New()
	s.Position = p
	s.Impression = imp
	s.Keys = KeysNone
	s.Qualities = nil
	s.Status = Success
	s.AwaitingDecision = false
}

// SetQualities replaces the recorded qualities.
func (s *AcquisitionSession) SetQualities(q []QualityState) {
	if len(q) > MaxStatusSlots {
		q = q[:MaxStatusSlots]
	}
	s.Qualities = append(s.Qualities[:0], q...)
}

// Indicators returns the UI colors for the current qualities.
func (s *AcquisitionSession) Indicators() []Color {
	return Indicators(s.Qualities, IndicatorCount(s.Position))
}

func (s *AcquisitionSession) Active() bool {
	return s.ID != uuid.Nil
}

// End clears the acquisition but keeps the position for re-renders.
func (s *AcquisitionSession) End() {
	s.ID = uuid.Nil
	s.AwaitingDecision = false
}
