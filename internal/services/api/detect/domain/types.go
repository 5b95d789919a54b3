// Package domain holds detect core types independent of transport or storage
package domain

import (
	"time"

	"vera/internal/core/media"
)

// Source marks which input a detection was run on
type Source string

const (
	// SourceFile is a multipart upload under file_data
	SourceFile Source = "file"

	// SourceImageURL is a remote image referenced by the JSON body
	SourceImageURL Source = "image_url"

	// SourceText is raw text from the JSON body
	SourceText Source = "text"
)

// Upload is a file the transport already spooled to local disk
// the service owns Path once handed over and always removes it
type Upload struct {
	Path     string
	Mime     string
	Filename string
	Size     int64
}

// Input is one detection request after transport decoding
// precedence is File, then ImageURL, then Text
type Input struct {
	File     *Upload
	ImageURL string
	Text     string
	ClientID string
}

// StoredObject is a file held by the remote object store
type StoredObject struct {
	URL              string     `json:"url" example:"https://res.cloudinary.com/demo/image/upload/v1/vera/detection/images/abc.jpg"`
	PublicID         string     `json:"public_id" example:"vera/detection/images/abc"`
	MediaType        media.Kind `json:"media_type" example:"image"`
	ResourceType     string     `json:"resource_type" example:"image"`
	OriginalFilename string     `json:"original_filename,omitempty"`
	Format           string     `json:"format,omitempty" example:"jpg"`
	Size             int        `json:"size" example:"204800"`
}

// ModelReply is what the detection model answered
// Text is the extracted output, Raw the untouched provider envelope
type ModelReply struct {
	Text string
	Raw  map[string]any
}

// Record is one completed detection kept in history
type Record struct {
	ID                  string     `json:"id" example:"5b0c7a52-9a4f-4b6a-a4a7-1f6a1d6b2a11"`
	ClientID            string     `json:"client_id,omitempty" example:"0xabc123"`
	RequestID           string     `json:"request_id,omitempty"`
	Source              Source     `json:"source" example:"text"`
	MediaType           media.Kind `json:"media_type" example:"text"`
	DeepfakeProbability int        `json:"deepfake_probability" example:"12"`
	NaturalProbability  int        `json:"natural_probability" example:"88"`
	Uncertain           bool       `json:"uncertain"`
	Overall             string     `json:"overall,omitempty"`
	CloudinaryURL       string     `json:"cloudinary_url,omitempty"`
	CloudinaryPublicID  string     `json:"cloudinary_public_id,omitempty"`
	Model               string     `json:"model,omitempty" example:"o3"`
	LatencyMS           int64      `json:"latency_ms" example:"5310"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ListQuery filters the history listing
type ListQuery struct {
	Limit    int    `json:"limit" validate:"omitempty,min=1,max=200" example:"20"`
	ClientID string `json:"client_id" validate:"omitempty,max=128" example:"0xabc123"`
}
