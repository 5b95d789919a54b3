// Package cloudinary stores detection media in Cloudinary
package cloudinary

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"vera/internal/core/media"
	perr "vera/internal/platform/errors"
	"vera/internal/platform/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/dustin/go-humanize"
)

const (
	defaultUploadTimeout = 120 * time.Second
	defaultChunkSize     = 6_000_000
	defaultQuality       = 95
	defaultMaxAttempts   = 3
	defaultBackoffStep   = 2 * time.Second
	defaultThumbSide     = 300

	// DefaultTransform is applied to uploads and display urls
	DefaultTransform = "q_95/f_auto"
)

// Reasons carried by adapter errors
const (
	ReasonNotConfigured  = "cloudinary_not_configured"
	ReasonFileNotFound   = "file_not_found"
	ReasonUploadFailed   = "upload_failed"
	ReasonDeletionFailed = "deletion_failed"
	ReasonInfoFailed     = "file_info_failed"
	ReasonPingFailed     = "connection_test_failed"
)

// Config configures the Client
type Config struct {
	CloudName string
	APIKey    string
	APISecret string

	// UploadTimeout bounds a single upload attempt
	UploadTimeout time.Duration
	ChunkSize     int64
	Quality       int

	// MaxAttempts counts the first try, BackoffStep grows linearly per retry
	MaxAttempts int
	BackoffStep time.Duration
}

// Configured reports whether all three credentials are present
func (c Config) Configured() bool {
	return strings.TrimSpace(c.CloudName) != "" &&
		strings.TrimSpace(c.APIKey) != "" &&
		strings.TrimSpace(c.APISecret) != ""
}

func (c Config) withDefaults() Config {
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = defaultUploadTimeout
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.Quality <= 0 {
		c.Quality = defaultQuality
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BackoffStep <= 0 {
		c.BackoffStep = defaultBackoffStep
	}
	return c
}

// Asset is the result of a successful upload
type Asset struct {
	URL              string     `json:"url"`
	PublicID         string     `json:"public_id"`
	Kind             media.Kind `json:"media_type"`
	ResourceType     string     `json:"resource_type"`
	OriginalFilename string     `json:"original_filename,omitempty"`
	Format           string     `json:"format,omitempty"`
	Bytes            int        `json:"size"`
}

// AssetInfo is what the provider knows about a stored asset
type AssetInfo struct {
	PublicID     string    `json:"public_id"`
	ResourceType string    `json:"resource_type"`
	Format       string    `json:"format"`
	Bytes        int       `json:"bytes"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	SecureURL    string    `json:"secure_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// Option customizes a Client
type Option func(*Client)

// withSDK replaces the provider SDK, used by tests
func withSDK(s sdk) Option { return func(c *Client) { c.sdk = s } }

// Client uploads, inspects and removes detection media
// an unconfigured client is valid and fails fast on every network call
type Client struct {
	cfg  Config
	sdk  sdk
	log  logger.Logger
	stat func(string) (os.FileInfo, error)
}

// New builds a client; missing credentials yield an unconfigured client, not an error
func New(cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:  cfg.withDefaults(),
		log:  *logger.Named("cloudinary"),
		stat: os.Stat,
	}
	for _, o := range opts {
		o(c)
	}
	if c.sdk == nil && c.cfg.Configured() {
		live, err := newLiveSDK(c.cfg)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeConfiguration, "cloudinary init failed")
		}
		c.sdk = live
	}
	return c, nil
}

// Configured reports whether network operations can run
func (c *Client) Configured() bool { return c != nil && c.sdk != nil }

func (c *Client) ensure() error {
	if c.Configured() {
		return nil
	}
	return perr.Reasonf(perr.ErrorCodeConfiguration, ReasonNotConfigured,
		"Cloudinary is not properly configured. Please check your environment variables.")
}

// UploadOption tweaks a single upload
type UploadOption func(*uploader.UploadParams)

// WithPublicID pins the remote public id
func WithPublicID(id string) UploadOption {
	return func(p *uploader.UploadParams) { p.PublicID = id }
}

// WithFolder overrides the routed folder
func WithFolder(folder string) UploadOption {
	return func(p *uploader.UploadParams) { p.Folder = folder }
}

// Upload stores the file at localPath, retrying timeouts with linear backoff
func (c *Client) Upload(ctx context.Context, localPath, mime string, opts ...UploadOption) (Asset, error) {
	if err := c.ensure(); err != nil {
		return Asset{}, err
	}
	fi, err := c.stat(localPath)
	if err != nil {
		return Asset{}, perr.Reasonf(perr.ErrorCodeNotFound, ReasonFileNotFound, "File not found: %s", localPath)
	}
	if fi.Size() > media.MaxUploadBytes {
		return Asset{}, perr.Reasonf(perr.ErrorCodePayloadTooLarge, "file_too_large",
			"File too large: %s. Maximum allowed size is %s.",
			humanize.IBytes(uint64(fi.Size())), humanize.IBytes(uint64(media.MaxUploadBytes)))
	}

	kind := media.ClassifyMime(mime)
	route := media.ResolveStorageRoute(kind)
	params := uploader.UploadParams{
		Folder:         route.Folder,
		ResourceType:   route.ResourceType,
		Transformation: fmt.Sprintf("q_%d/f_auto", c.cfg.Quality),
	}
	for _, o := range opts {
		o(&params)
	}

	attempts := 0
	var res *uploader.UploadResult
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		c.log.Info().
			Int("attempt", attempts).
			Int("max_attempts", c.cfg.MaxAttempts).
			Str("path", localPath).
			Str("media_type", kind.String()).
			Msg("cloudinary upload")

		actx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
		defer cancel()

		r, err := c.sdk.upload(actx, localPath, params)
		if err == nil && r != nil && r.Error.Message != "" {
			err = &providerError{msg: r.Error.Message}
		}
		if err == nil && r == nil {
			err = &providerError{msg: "empty upload response"}
		}
		if err != nil {
			if isTimeout(ctx, err) {
				err = perr.MarkRetryable(err)
			}
			if !perr.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		res = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Int("attempt", attempts).Dur("retry_in", wait).Msg("cloudinary upload timed out retrying")
	}

	if err := backoff.RetryNotify(op, retryPolicy(ctx, c.cfg.MaxAttempts, c.cfg.BackoffStep), notify); err != nil {
		c.log.Error().Err(err).Int("attempts", attempts).Msg("cloudinary upload failed")
		cause := perr.Root(err)
		return Asset{}, perr.WithReason(
			perr.Wrapf(cause, perr.ErrorCodeUpstream, "Cloudinary upload failed after %d attempts: %v", attempts, cause),
			ReasonUploadFailed,
		)
	}

	c.log.Info().Str("url", res.SecureURL).Str("size", humanize.Bytes(uint64(res.Bytes))).Msg("cloudinary upload ok")
	return Asset{
		URL:              res.SecureURL,
		PublicID:         res.PublicID,
		Kind:             kind,
		ResourceType:     route.ResourceType,
		OriginalFilename: res.OriginalFilename,
		Format:           res.Format,
		Bytes:            res.Bytes,
	}, nil
}

// Remove deletes a stored asset and returns the provider's result string
// callers doing compensating cleanup log the error and move on
func (c *Client) Remove(ctx context.Context, publicID, resourceType string) (string, error) {
	if err := c.ensure(); err != nil {
		return "", err
	}
	if resourceType == "" {
		resourceType = "image"
	}
	r, err := c.sdk.destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: resourceType})
	if err == nil && r != nil && r.Error.Message != "" {
		err = &providerError{msg: r.Error.Message}
	}
	if err != nil {
		return "", perr.WithReason(
			perr.Wrapf(err, perr.ErrorCodeUpstream, "Cloudinary deletion failed"),
			ReasonDeletionFailed,
		)
	}
	if r == nil {
		return "", nil
	}
	return r.Result, nil
}

// Info fetches the stored metadata of an asset
func (c *Client) Info(ctx context.Context, publicID, resourceType string) (AssetInfo, error) {
	if err := c.ensure(); err != nil {
		return AssetInfo{}, err
	}
	if resourceType == "" {
		resourceType = "image"
	}
	r, err := c.sdk.asset(ctx, admin.AssetParams{PublicID: publicID, AssetType: api.AssetType(resourceType)})
	if err == nil && r != nil && r.Error.Message != "" {
		err = &providerError{msg: r.Error.Message}
	}
	if err == nil && r == nil {
		err = &providerError{msg: "empty asset response"}
	}
	if err != nil {
		return AssetInfo{}, perr.WithReason(
			perr.Wrapf(err, perr.ErrorCodeUpstream, "Get file info failed"),
			ReasonInfoFailed,
		)
	}
	return AssetInfo{
		PublicID:     r.PublicID,
		ResourceType: r.ResourceType,
		Format:       r.Format,
		Bytes:        r.Bytes,
		Width:        r.Width,
		Height:       r.Height,
		SecureURL:    r.SecureURL,
		CreatedAt:    r.CreatedAt,
	}, nil
}

// DisplayURL builds a delivery url; an empty transform means DefaultTransform
func (c *Client) DisplayURL(publicID, transform string) (string, error) {
	if err := c.ensure(); err != nil {
		return "", err
	}
	if transform == "" {
		transform = DefaultTransform
	}
	return c.sdk.imageURL(publicID, transform)
}

// ThumbnailURL builds a fill-cropped thumbnail url, sides default to 300
func (c *Client) ThumbnailURL(publicID string, w, h int) (string, error) {
	if w <= 0 {
		w = defaultThumbSide
	}
	if h <= 0 {
		h = defaultThumbSide
	}
	return c.DisplayURL(publicID, fmt.Sprintf("c_fill,w_%d,h_%d/%s", w, h, DefaultTransform))
}

// Ping checks credentials and reachability
func (c *Client) Ping(ctx context.Context) (string, error) {
	if err := c.ensure(); err != nil {
		return "", err
	}
	r, err := c.sdk.ping(ctx)
	if err == nil && r != nil && r.Error.Message != "" {
		err = &providerError{msg: r.Error.Message}
	}
	if err != nil {
		return "", perr.WithReason(
			perr.Wrapf(err, perr.ErrorCodeUpstream, "Cloudinary ping failed: %v", err),
			ReasonPingFailed,
		)
	}
	if r == nil {
		return "", nil
	}
	return r.Status, nil
}
