package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/seafresh/backend/internal/domain"
)

// Matching defaults
const (
	defaultConfidenceThreshold = 50.0 // strictly greater than
	defaultMaxSuggestions      = 5
	catalogMatchConfidence     = 75.0 // fixed score for a catalog text match
)

// MatchConfig holds configuration for the product matcher.
// Zero or negative fields take the defaults (threshold 50, five
// suggestions, confidence 75), so a threshold of exactly 0 cannot be
// expressed; use a small positive value such as 0.01 to admit everything
// above zero.
type MatchConfig struct {
	ConfidenceThreshold float64
	MaxSuggestions      int
	CandidateConfidence float64
}

// ProductMatcher suggests catalog products whose text contains a detected term
type ProductMatcher struct {
	catalog             domain.CatalogRepository
	confidenceThreshold float64
	maxSuggestions      int
	candidateConfidence float64
}

// NewProductMatcher creates a matcher; zero config values take the defaults
func NewProductMatcher(catalog domain.CatalogRepository, config MatchConfig) *ProductMatcher {
	threshold := config.ConfidenceThreshold
	if threshold <= 0 {
		threshold = defaultConfidenceThreshold
	}

	maxSuggestions := config.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}

	confidence := config.CandidateConfidence
	if confidence <= 0 {
		confidence = catalogMatchConfidence
	}

	return &ProductMatcher{
		catalog:             catalog,
		confidenceThreshold: threshold,
		maxSuggestions:      maxSuggestions,
		candidateConfidence: confidence,
	}
}

// GetSuggestedProducts walks the available catalog in order and returns up
// to maxSuggestions candidates. A product is emitted once, tagged with the
// first detected term its name or description contains. Catalog errors are
// returned to the caller.
func (m *ProductMatcher) GetSuggestedProducts(
	ctx context.Context,
	labels []domain.Label,
	objects []domain.DetectedObject,
) ([]domain.ProductCandidate, error) {
	terms := m.DetectedTerms(labels, objects)

	products, err := m.catalog.ListAvailableProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available products: %w", err)
	}

	candidates := make([]domain.ProductCandidate, 0, m.maxSuggestions)
	for _, product := range products {
		if len(candidates) >= m.maxSuggestions {
			break
		}
		if !product.IsAvailable {
			continue
		}

		term, ok := firstMatchingTerm(terms,
			strings.ToLower(product.Name),
			strings.ToLower(product.DescriptionOrEmpty()))
		if !ok {
			continue
		}

		candidates = append(candidates, domain.ProductCandidate{
			ID:          product.ID,
			Name:        product.Name,
			Description: product.Description,
			Price:       product.Price,
			ImageURL:    product.ImageURL,
			MatchTerm:   term,
			Confidence:  m.candidateConfidence,
		})
	}

	return candidates, nil
}

// DetectedTerms returns lower-cased label descriptions followed by object
// names whose confidence exceeds the threshold.
func (m *ProductMatcher) DetectedTerms(labels []domain.Label, objects []domain.DetectedObject) []string {
	terms := make([]string, 0, len(labels)+len(objects))
	for _, label := range labels {
		if label.Confidence > m.confidenceThreshold {
			terms = append(terms, strings.ToLower(label.Description))
		}
	}
	for _, obj := range objects {
		if obj.Confidence > m.confidenceThreshold {
			terms = append(terms, strings.ToLower(obj.Name))
		}
	}
	return terms
}

// firstMatchingTerm returns the first term contained in name or description
func firstMatchingTerm(terms []string, name, description string) (string, bool) {
	for _, term := range terms {
		if strings.Contains(name, term) || strings.Contains(description, term) {
			return term, true
		}
	}
	return "", false
}
