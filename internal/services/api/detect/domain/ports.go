package domain

import (
	"context"

	"vera/internal/core/media"
)

// ServicePort is the interface implemented by the detect service
type ServicePort interface {
	Detect(ctx context.Context, in Input) (Outcome, error)
	Health(ctx context.Context) HealthReport
	SupportedTypes() Catalogue
	TestConnection(ctx context.Context) (ConnectionReport, error)
	TestUpload(ctx context.Context, up *Upload) (UploadTestReport, error)
	History(ctx context.Context, q ListQuery) ([]Record, error)
}

// ObjectStore keeps uploaded media somewhere the model can fetch it
type ObjectStore interface {
	Configured() bool
	Upload(ctx context.Context, localPath, mime string) (StoredObject, error)
	Remove(ctx context.Context, publicID, resourceType string) error
	Ping(ctx context.Context) (string, error)
}

// Detector asks the detection model about one piece of content
// content is a url for stored media and raw text otherwise
type Detector interface {
	Configured() bool
	Model() string
	Analyze(ctx context.Context, kind media.Kind, content string) (ModelReply, error)
}

// Recorder persists completed detections; failures never reach the caller
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// HistoryReader lists recorded detections
type HistoryReader interface {
	List(ctx context.Context, q ListQuery) ([]Record, error)
}
