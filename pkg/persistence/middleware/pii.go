package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/ports"
)

// Mask replaces redacted attribute values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.Backend
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the values of attributes whose
// name matches one of the patterns before they are persisted. The in-memory objects
// keep their values until the store is reloaded.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.Backend) ports.Backend {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, snapshot ports.Snapshot) error {
	masked := make(ports.Snapshot, len(snapshot))
	for key, record := range snapshot {
		// Copy so the caller's snapshot is left untouched.
		cloned := deepCopyMap(record)
		maskMap(cloned, m.patterns)
		masked[key] = cloned
	}
	return m.next.Save(ctx, masked)
}

func (m *piiMiddleware) Load(ctx context.Context) (ports.Snapshot, error) {
	return m.next.Load(ctx)
}

func (m *piiMiddleware) Close() error {
	return m.next.Close()
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if models.IsReserved(k) {
			continue
		}
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
