package guidance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingPort keeps a copy of every transmitted document.
type recordingPort struct {
	mu   sync.Mutex
	recs []OutputRecord
	err  error
}

func (p *recordingPort) SetOutputData(_ context.Context, rec OutputRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	rec.Data = append([]byte(nil), rec.Data[:rec.Size]...)
	p.recs = append(p.recs, rec)
	return nil
}

func (p *recordingPort) docs(t *testing.T) []Document {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Document, 0, len(p.recs))
	for _, rec := range p.recs {
		doc, err := Decode(rec.Data)
		require.NoError(t, err)
		out = append(out, doc)
	}
	return out
}

func (p *recordingPort) last(t *testing.T) Document {
	t.Helper()
	docs := p.docs(t)
	require.NotEmpty(t, docs)
	return docs[len(docs)-1]
}

func (p *recordingPort) reset() {
	p.mu.Lock()
	p.recs = nil
	p.mu.Unlock()
}

var errPortDown = errors.New("port down")

func newTestRenderer(t *testing.T, g GuidanceType) (Renderer, *recordingPort) {
	t.Helper()
	port := &recordingPort{}
	r, err := NewRenderer(g, NewEncoder(port), "/opt/biobase/templates")
	require.NoError(t, err)
	return r, port
}

func session(p Position, imp Impression, keys ActiveKeys, q ...QualityState) *AcquisitionSession {
	s := NewAcquisitionSession()
	s.Begin(p, imp)
	s.Keys = keys
	s.SetQualities(q)
	return s
}
