package domain

import (
	"time"

	"vera/internal/core/media"
	"vera/internal/core/verdict"
)

// DetectBody is the JSON side of a detect request
// both fields are optional here; the service decides which one wins
type DetectBody struct {
	ImageURL string `json:"image_url" validate:"omitempty,max=2048" example:"https://example.com/photo.jpg"`
	Text     string `json:"text" example:"The quick brown fox jumps over the lazy dog."`
}

// Result is a completed detection
type Result struct {
	verdict.Verdict
	RawModelOutput     string         `json:"raw_model_output"`
	SDKRaw             map[string]any `json:"sdk_raw" swaggertype:"object"`
	ProvidedSource     string         `json:"provided_source" example:"text (body)"`
	CloudinaryURL      *string        `json:"cloudinary_url"`
	CloudinaryPublicID *string        `json:"cloudinary_public_id"`
}

// UncertainResult is served when the model output held no JSON object
type UncertainResult struct {
	verdict.Verdict
	RawModelOutput string         `json:"raw_model_output"`
	SDKRaw         map[string]any `json:"sdk_raw" swaggertype:"object"`
	Note           string         `json:"note"`
	CloudinaryURL  *string        `json:"cloudinary_url"`
}

// Outcome is either a Result or an UncertainResult
type Outcome struct {
	Uncertain bool
	Result    Result
	Fallback  UncertainResult
}

// Verdict returns the verdict of whichever shape the outcome holds
func (o Outcome) Verdict() verdict.Verdict {
	if o.Uncertain {
		return o.Fallback.Verdict
	}
	return o.Result.Verdict
}

// Body is the wire shape of the outcome
func (o Outcome) Body() any {
	if o.Uncertain {
		return o.Fallback
	}
	return o.Result
}

// Service states reported by the health check
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	StateConfigured           = "configured"
	StateMissingAPIKey        = "missing API key"
	StateMissingConfiguration = "missing configuration"
)

// HealthServices reports each collaborator's configuration state
type HealthServices struct {
	OpenAI     string `json:"openai" example:"configured"`
	Cloudinary string `json:"cloudinary" example:"configured"`
}

// HealthReport is the detect health check body
type HealthReport struct {
	Status    string         `json:"status" example:"healthy"`
	Message   string         `json:"message" example:"Detection service is operational"`
	Timestamp time.Time      `json:"timestamp"`
	Services  HealthServices `json:"services"`
}

// Healthy reports whether both collaborators are configured
func (h HealthReport) Healthy() bool { return h.Status == StatusHealthy }

// ConnectionReport is the object store ping result
type ConnectionReport struct {
	Success    bool      `json:"success" example:"true"`
	Message    string    `json:"message" example:"Cloudinary connection successful"`
	PingResult any       `json:"ping_result" swaggertype:"object"`
	Timestamp  time.Time `json:"timestamp"`
}

// UploadTestReport is the upload round trip result
type UploadTestReport struct {
	Success       bool         `json:"success" example:"true"`
	Message       string       `json:"message" example:"Cloudinary upload test successful"`
	UploadResult  StoredObject `json:"upload_result"`
	TestCompleted bool         `json:"test_completed" example:"true"`
}

// Failure is the unwrapped error body of the diagnostic endpoints
type Failure struct {
	Error   string         `json:"error" example:"connection_test_failed"`
	Message string         `json:"message"`
	Details map[string]any `json:"details" swaggertype:"object"`
}

// Catalogue is the static list of accepted types and limits
type Catalogue = media.Catalogue

// ProvidedSource renders the human readable origin of a detection input
func ProvidedSource(src Source, mime string) string {
	switch src {
	case SourceFile:
		return "uploaded file (mimetype=" + mime + ")"
	case SourceImageURL:
		return "image_url (body)"
	default:
		return "text (body)"
	}
}
