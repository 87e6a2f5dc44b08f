package middleware

import (
	"context"
	"maps"
	"regexp"

	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/ports"
)

// Mask replaces the stored value of masked fields.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks string user state fields
// whose name matches one of the patterns, e.g. typed passwords or URLs.
// Masking is lossy: a resumed session reads the mask, not the original value.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	// Copy so the caller's snapshot keeps the real values.
	snap.Values = maps.Clone(snap.Values)
	for k, v := range snap.Values {
		if _, ok := v.(string); ok && m.matches(k) {
			snap.Values[k] = Mask
		}
	}
	return m.next.Save(ctx, sessionID, snap)
}

func (m *piiMiddleware) matches(field string) bool {
	for _, p := range m.patterns {
		if p.MatchString(field) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
