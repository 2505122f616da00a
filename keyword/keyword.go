// Package keyword decides whether an inbound message is relevant enough to be
// provisioned and relayed.
package keyword

import "strings"

// DefaultKeyword is used when no keywords are configured.
const DefaultKeyword = "pembayaran"

// Decision is the outcome of the gate. Keyword is the configured keyword that
// matched, in its configured spelling, or empty when Forward is false.
type Decision struct {
	Forward bool
	Keyword string
}

// Gate matches message text against an ordered keyword list.
type Gate struct {
	fallback string
}

// NewGate returns a gate that falls back to fallback when the configured list
// is empty. An empty fallback selects DefaultKeyword.
func NewGate(fallback string) *Gate {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = DefaultKeyword
	}
	return &Gate{fallback: fallback}
}

// ShouldForward reports the first keyword, in configured order, contained in
// text. Matching is case-insensitive.
func (g *Gate) ShouldForward(text string, keywords []string) Decision {
	candidates := normalize(keywords)
	if len(candidates) == 0 {
		candidates = []string{g.fallback}
	}
	lower := strings.ToLower(text)
	for _, kw := range candidates {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return Decision{Forward: true, Keyword: kw}
		}
	}
	return Decision{}
}

// ShouldForward applies a gate with DefaultKeyword as fallback.
func ShouldForward(text string, keywords []string) Decision {
	return NewGate("").ShouldForward(text, keywords)
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
