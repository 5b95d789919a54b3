// Package media classifies content types and urls into media kinds and storage routes
package media

import (
	"net/url"
	"strings"
)

// Kind is the semantic media category driving storage routing and prompt construction
type Kind string

const (
	Image   Kind = "image"
	Video   Kind = "video"
	Audio   Kind = "audio"
	Text    Kind = "text"
	Unknown Kind = "unknown"
)

// Valid reports whether k is one of the four known kinds
func (k Kind) Valid() bool {
	switch k {
	case Image, Video, Audio, Text:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// ParseKind maps a raw string onto a Kind, unknown when it is not recognized
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k.Valid() {
		return k
	}
	return Unknown
}

// MaxUploadBytes is the largest file accepted for upload (100 MiB)
const MaxUploadBytes int64 = 100 << 20

// MaxFiles is the number of file parts advertised for one request
const MaxFiles = 5

// RootFolder is the remote folder every detection asset lives under
const RootFolder = "vera/detection"

// ClassifyMime maps a mime type to a kind by prefix
func ClassifyMime(mime string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return Image
	case strings.HasPrefix(mime, "video/"):
		return Video
	case strings.HasPrefix(mime, "audio/"):
		return Audio
	default:
		return Unknown
	}
}

var supportedMimes = map[string]struct{}{
	"image/jpeg": {}, "image/jpg": {}, "image/png": {}, "image/gif": {},
	"image/webp": {}, "image/bmp": {}, "image/svg+xml": {},

	"video/mp4": {}, "video/mov": {}, "video/avi": {},
	"video/mkv": {}, "video/webm": {}, "video/flv": {},

	"audio/mpeg": {}, "audio/wav": {}, "audio/ogg": {},
	"audio/aac": {}, "audio/flac": {}, "audio/mp4": {},

	"application/pdf": {}, "text/plain": {},
}

// IsSupportedMime reports exact membership in the accepted mime list
func IsSupportedMime(mime string) bool {
	_, ok := supportedMimes[mime]
	return ok
}

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"}

// IsValidImageURL reports whether raw is an absolute url whose path ends in an image extension
// the host is required since the model fetches the image itself, so file:///a.png is rejected
func IsValidImageURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, ext := range imageExts {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// Route is where a kind lands in the remote store
type Route struct {
	Folder       string
	ResourceType string
}

// ResolveStorageRoute maps a kind to its remote folder and resource type
func ResolveStorageRoute(k Kind) Route {
	rt := "raw"
	switch k {
	case Image:
		rt = "image"
	case Video:
		rt = "video"
	}
	if k == "" {
		k = Unknown
	}
	return Route{Folder: RootFolder + "/" + string(k) + "s", ResourceType: rt}
}

// Catalogue is the static list of accepted extensions and limits
type Catalogue struct {
	SupportedTypes SupportedTypes `json:"supported_types"`
	MaxFileSize    string         `json:"max_file_size" example:"100MB"`
	MaxFiles       int            `json:"max_files" example:"5"`
}

// SupportedTypes groups accepted extensions by family
type SupportedTypes struct {
	Images    []string `json:"images"`
	Videos    []string `json:"videos"`
	Audio     []string `json:"audio"`
	Documents []string `json:"documents"`
}

// SupportedCatalogue returns a fresh copy of the accepted extensions catalogue
func SupportedCatalogue() Catalogue {
	return Catalogue{
		SupportedTypes: SupportedTypes{
			Images:    []string{"jpg", "jpeg", "png", "gif", "webp", "bmp", "svg"},
			Videos:    []string{"mp4", "mov", "avi", "mkv", "webm", "flv"},
			Audio:     []string{"mp3", "wav", "ogg", "aac", "flac", "m4a"},
			Documents: []string{"pdf", "txt"},
		},
		MaxFileSize: "100MB",
		MaxFiles:    MaxFiles,
	}
}
