package module

import (
	"time"

	"vera/internal/adapters/cloudinary"
	"vera/internal/adapters/openai"
	"vera/internal/platform/config"
)

// Options controls the collaborators and the upload spool
type Options struct {
	OpenAI     openai.Options
	Cloudinary cloudinary.Config

	// UploadDir receives spooled multipart files before they are uploaded
	UploadDir string
}

// FromConfig reads OPENAI_*, CLOUDINARY_* and CORE_API_UPLOAD_DIR from process config/env
func FromConfig(cfg config.Conf) Options {
	oc := cfg.Prefix("OPENAI_")
	cc := cfg.Prefix("CLOUDINARY_")
	return Options{
		OpenAI: openai.Options{
			APIKey:          oc.MayString("API_KEY", ""),
			BaseURL:         oc.MayString("BASE_URL", ""),
			Model:           oc.MayString("MODEL", "o3"),
			MaxOutputTokens: oc.MayInt("MAX_OUTPUT_TOKENS", 800),
			Timeout:         oc.MayDuration("TIMEOUT", 5*time.Minute),
		},
		Cloudinary: cloudinary.Config{
			CloudName:     cc.MayString("CLOUD_NAME", ""),
			APIKey:        cc.MayString("API_KEY", ""),
			APISecret:     cc.MayString("API_SECRET", ""),
			UploadTimeout: cc.MayDuration("UPLOAD_TIMEOUT", 120*time.Second),
			MaxAttempts:   cc.MayInt("UPLOAD_ATTEMPTS", 3),
		},
		UploadDir: cfg.Prefix("CORE_API_").MayString("UPLOAD_DIR", "uploads"),
	}
}
