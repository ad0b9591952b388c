package usecase

import (
	"strings"

	"github.com/seafresh/backend/internal/domain"
)

// DefaultSeafoodVocabulary lists the lower-case substrings that flag an image as seafood.
// Short terms that occur inside common words ("cod", "roe", "eel") are left
// out. Callers who want a wider table pass their own to NewSeafoodClassifier.
var DefaultSeafoodVocabulary = []string{
	// Generic
	"seafood", "fish", "shellfish", "crustacean", "mollusc", "mollusk",
	"sushi", "sashimi", "caviar",
	// Fish species
	"salmon", "tuna", "trout", "mackerel", "sardine", "anchovy", "herring",
	"halibut", "snapper", "sea bass", "tilapia", "haddock", "swordfish",
	"flounder", "sole", "carp",
	// Crustaceans
	"shrimp", "prawn", "crab", "lobster", "crayfish", "crawfish", "langoustine",
	// Molluscs
	"oyster", "clam", "mussel", "scallop", "squid", "octopus", "calamari",
	"cuttlefish", "abalone",
}

// SeafoodClassifier flags labels and objects that mention seafood
type SeafoodClassifier struct {
	vocabulary []string
}

// NewSeafoodClassifier creates a classifier. A nil or empty vocabulary
// falls back to DefaultSeafoodVocabulary.
func NewSeafoodClassifier(vocabulary []string) *SeafoodClassifier {
	if len(vocabulary) == 0 {
		vocabulary = DefaultSeafoodVocabulary
	}

	terms := make([]string, 0, len(vocabulary))
	for _, term := range vocabulary {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return &SeafoodClassifier{vocabulary: terms}
}

// DetectSeafood reports whether any label description, then any object name,
// contains a vocabulary term. Matching is case-insensitive.
func (c *SeafoodClassifier) DetectSeafood(labels []domain.Label, objects []domain.DetectedObject) bool {
	for _, label := range labels {
		if c.mentionsSeafood(label.Description) {
			return true
		}
	}
	for _, obj := range objects {
		if c.mentionsSeafood(obj.Name) {
			return true
		}
	}
	return false
}

func (c *SeafoodClassifier) mentionsSeafood(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range c.vocabulary {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
