package scheduling

import (
	"strings"

	"github.com/relayline/callback-service/internal/domain"
)

// Segment is a coarse behavioral classification of a contact used to
// select time-of-day calling heuristics.
type Segment string

const (
	SegmentResidential  Segment = "residential"
	SegmentBusiness     Segment = "business"
	SegmentTradesperson Segment = "tradesperson"
	SegmentDefault      Segment = "default"
)

// SegmentProfile holds the static calling heuristics for a segment.
type SegmentProfile struct {
	PreferredHours    []int
	AvoidedHours      []int
	WeekendMultiplier float64
}

// Prefers reports whether an hour is in the segment's preferred set.
func (p SegmentProfile) Prefers(hour int) bool {
	return containsHour(p.PreferredHours, hour)
}

// Avoids reports whether an hour is in the segment's avoided set.
func (p SegmentProfile) Avoids(hour int) bool {
	return containsHour(p.AvoidedHours, hour)
}

func containsHour(hours []int, hour int) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}

// Classifier maps a contact to a calling-pattern segment. It is a
// pluggable strategy so the keyword heuristic can be swapped for a real
// classifier without touching the scorer.
type Classifier interface {
	Classify(contact *domain.Contact) Segment
}

var businessKeywords = []string{
	"commercial", "business", "office", "retail", "corporate", "company",
}

var tradespersonKeywords = []string{
	"contractor", "builder", "tradesperson", "tradie", "plumber",
	"electrician", "carpenter", "roofer",
}

// KeywordClassifier inspects a contact's free-text classification fields
// for segment cues. It is a heuristic, not a trained classifier.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the default keyword-based classifier.
func NewKeywordClassifier() KeywordClassifier {
	return KeywordClassifier{}
}

// Classify returns the segment for a contact. A nil contact or one with
// no recognizable cues in its classification fields maps to the default
// and residential segments respectively.
func (KeywordClassifier) Classify(contact *domain.Contact) Segment {
	if contact == nil {
		return SegmentDefault
	}

	text := strings.ToLower(strings.Join([]string{
		contact.ProjectType,
		contact.Classification,
		contact.Notes,
	}, " "))
	if strings.TrimSpace(text) == "" {
		return SegmentDefault
	}

	for _, kw := range businessKeywords {
		if strings.Contains(text, kw) {
			return SegmentBusiness
		}
	}
	for _, kw := range tradespersonKeywords {
		if strings.Contains(text, kw) {
			return SegmentTradesperson
		}
	}
	return SegmentResidential
}
