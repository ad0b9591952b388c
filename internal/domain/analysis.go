package domain

import "math"

// Label is a classification tag returned by the vision provider
type Label struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`      // 0-1
	Confidence  float64 `json:"confidence"` // score*100, two decimals
}

// DetectedObject is a localized object returned by the vision provider
type DetectedObject struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// ProductCandidate is a catalog product proposed as a match for an image
type ProductCandidate struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	MatchTerm   string  `json:"match_term"`
	Confidence  float64 `json:"confidence"`
}

// AnalysisResult is the outcome of one recognition request.
// Slices are never nil so the JSON shape is stable across live and mock paths.
type AnalysisResult struct {
	Success           bool               `json:"success"`
	Labels            []Label            `json:"labels"`
	Objects           []DetectedObject   `json:"objects"`
	Text              []string           `json:"text"`
	SeafoodDetected   bool               `json:"seafood_detected"`
	SuggestedProducts []ProductCandidate `json:"suggested_products"`
	MockData          bool               `json:"mock_data"`
}

// ScoreToConfidence converts a provider score (0-1) to a percentage rounded to two decimals
func ScoreToConfidence(score float64) float64 {
	return math.Round(score*100*100) / 100
}

// NewLabel builds a Label with its confidence derived from score
func NewLabel(description string, score float64) Label {
	return Label{
		Description: description,
		Score:       score,
		Confidence:  ScoreToConfidence(score),
	}
}

// NewDetectedObject builds a DetectedObject with its confidence derived from score
func NewDetectedObject(name string, score float64) DetectedObject {
	return DetectedObject{
		Name:       name,
		Score:      score,
		Confidence: ScoreToConfidence(score),
	}
}
