package services

import "strings"

// ModerationFilter classifies user input against a fixed vocabulary of
// disallowed terms. It is an audit signal only: it runs after the provider
// call and never blocks the message or alters the response.
type ModerationFilter struct {
	terms []string
}

func NewModerationFilter(terms []string) *ModerationFilter {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			normalized = append(normalized, t)
		}
	}
	return &ModerationFilter{terms: normalized}
}

// Classify reports whether the message contains a disallowed term. A single
// case-insensitive substring match flags the whole message.
func (f *ModerationFilter) Classify(message string) bool {
	lowered := strings.ToLower(message)
	for _, term := range f.terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
