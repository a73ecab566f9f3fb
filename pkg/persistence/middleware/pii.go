package middleware

import (
	"context"
	"regexp"

	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
)

// Mask replaces the value of every masked field.
const Mask = "***"

// DefaultPIIPatterns match the contact fields collected by the funnels.
var DefaultPIIPatterns = []string{`(?i)name`, `(?i)phone`, `(?i)e-?mail`, `(?i)whatsapp`}

type piiMiddleware struct {
	next     ports.Journal
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks lead values whose keys match the patterns.
// It panics on an invalid pattern.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.Journal) ports.Journal {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Record(ctx context.Context, entry domain.JournalEntry) error {
	// Clone so the caller's lead (still used for the outbound request) is untouched.
	entry.Lead = entry.Lead.Clone()
	for k := range entry.Lead {
		for _, p := range m.patterns {
			if p.MatchString(k) {
				entry.Lead[k] = Mask
				break
			}
		}
	}
	return m.next.Record(ctx, entry)
}

func (m *piiMiddleware) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	return m.next.Recent(ctx, limit)
}
