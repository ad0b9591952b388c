package domain

// Feature types requested from the vision provider
const (
	FeatureLabelDetection     = "LABEL_DETECTION"
	FeatureObjectLocalization = "OBJECT_LOCALIZATION"
	FeatureTextDetection      = "TEXT_DETECTION"
)

// VisionAnnotateRequest is the body of an images:annotate call
type VisionAnnotateRequest struct {
	Requests []VisionImageRequest `json:"requests"`
}

// VisionImageRequest asks for a set of features on a single image
type VisionImageRequest struct {
	Image    VisionImage     `json:"image"`
	Features []VisionFeature `json:"features"`
}

// VisionImage carries base64 encoded image content
type VisionImage struct {
	Content string `json:"content"`
}

// VisionFeature selects one detection type and its result cap
type VisionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

// VisionAnnotateResponse is the provider reply; one entry per requested image
type VisionAnnotateResponse struct {
	Responses []VisionImageResponse `json:"responses"`
}

// VisionImageResponse holds the annotation sections for one image.
// Any section may be absent.
type VisionImageResponse struct {
	LabelAnnotations           []VisionEntityAnnotation `json:"labelAnnotations,omitempty"`
	LocalizedObjectAnnotations []VisionObjectAnnotation `json:"localizedObjectAnnotations,omitempty"`
	TextAnnotations            []VisionEntityAnnotation `json:"textAnnotations,omitempty"`
	Error                      *VisionStatus            `json:"error,omitempty"`
}

// VisionEntityAnnotation is a label or text annotation
type VisionEntityAnnotation struct {
	Mid         string  `json:"mid,omitempty"`
	Locale      string  `json:"locale,omitempty"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Topicality  float64 `json:"topicality,omitempty"`
}

// VisionObjectAnnotation is a localized object annotation
type VisionObjectAnnotation struct {
	Mid   string  `json:"mid,omitempty"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// VisionStatus is a per-image error reported inside a 200 response
type VisionStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
