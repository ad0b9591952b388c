package vision

import (
	"github.com/seafresh/backend/internal/domain"
)

// Normalize flattens a provider response into labels, objects and text.
// Missing sections come back as empty, non-nil slices.
func Normalize(resp *domain.VisionAnnotateResponse) ([]domain.Label, []domain.DetectedObject, []string) {
	labels := []domain.Label{}
	objects := []domain.DetectedObject{}
	text := []string{}

	if resp == nil || len(resp.Responses) == 0 {
		return labels, objects, text
	}
	first := resp.Responses[0]

	for _, ann := range first.LabelAnnotations {
		labels = append(labels, domain.NewLabel(ann.Description, ann.Score))
	}
	for _, ann := range first.LocalizedObjectAnnotations {
		objects = append(objects, domain.NewDetectedObject(ann.Name, ann.Score))
	}
	for _, ann := range first.TextAnnotations {
		text = append(text, ann.Description)
	}

	return labels, objects, text
}
