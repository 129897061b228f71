package scheduling

import (
	"testing"

	"github.com/relayline/callback-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	classifier := NewKeywordClassifier()

	tests := map[string]struct {
		contact  *domain.Contact
		expected Segment
	}{
		"NilContact": {
			contact:  nil,
			expected: SegmentDefault,
		},
		"NoClassificationFields": {
			contact:  &domain.Contact{ID: "c1", Name: "Jo"},
			expected: SegmentDefault,
		},
		"BusinessFromProjectType": {
			contact:  &domain.Contact{ProjectType: "Office fit-out"},
			expected: SegmentBusiness,
		},
		"BusinessFromClassification": {
			contact:  &domain.Contact{Classification: "commercial lead"},
			expected: SegmentBusiness,
		},
		"TradespersonFromNotes": {
			contact:  &domain.Contact{Notes: "referred by a local plumber"},
			expected: SegmentTradesperson,
		},
		"TradespersonContractor": {
			contact:  &domain.Contact{Classification: "Contractor"},
			expected: SegmentTradesperson,
		},
		// Business keywords win when both kinds of cue appear.
		"BusinessBeatsTradesperson": {
			contact:  &domain.Contact{ProjectType: "commercial electrician"},
			expected: SegmentBusiness,
		},
		"ResidentialFallback": {
			contact:  &domain.Contact{ProjectType: "kitchen renovation"},
			expected: SegmentResidential,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, classifier.Classify(tc.contact))
		})
	}
}

func TestSegmentProfileFor(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, cfg.Segments[SegmentBusiness], cfg.SegmentProfileFor(SegmentBusiness))
	// Unconfigured segments fall back to the default profile.
	assert.Equal(t, cfg.Segments[SegmentDefault], cfg.SegmentProfileFor(Segment("government")))
}
