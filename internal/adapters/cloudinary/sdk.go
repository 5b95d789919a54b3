package cloudinary

import (
	"context"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// sdk is the slice of the provider SDK the client relies on
// tests swap in fakes to drive retry and cleanup paths
type sdk interface {
	upload(ctx context.Context, path string, p uploader.UploadParams) (*uploader.UploadResult, error)
	destroy(ctx context.Context, p uploader.DestroyParams) (*uploader.DestroyResult, error)
	asset(ctx context.Context, p admin.AssetParams) (*admin.AssetResult, error)
	ping(ctx context.Context) (*admin.PingResult, error)
	imageURL(publicID, transform string) (string, error)
}

type liveSDK struct {
	c *cld.Cloudinary
}

func newLiveSDK(cfg Config) (*liveSDK, error) {
	c, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	c.Config.API.UploadTimeout = int64(cfg.UploadTimeout.Seconds())
	c.Config.API.ChunkSize = cfg.ChunkSize
	c.Config.URL.Secure = true
	return &liveSDK{c: c}, nil
}

func (s *liveSDK) upload(ctx context.Context, path string, p uploader.UploadParams) (*uploader.UploadResult, error) {
	return s.c.Upload.Upload(ctx, path, p)
}

func (s *liveSDK) destroy(ctx context.Context, p uploader.DestroyParams) (*uploader.DestroyResult, error) {
	return s.c.Upload.Destroy(ctx, p)
}

func (s *liveSDK) asset(ctx context.Context, p admin.AssetParams) (*admin.AssetResult, error) {
	return s.c.Admin.Asset(ctx, p)
}

func (s *liveSDK) ping(ctx context.Context) (*admin.PingResult, error) {
	return s.c.Admin.Ping(ctx)
}

func (s *liveSDK) imageURL(publicID, transform string) (string, error) {
	a, err := s.c.Image(publicID)
	if err != nil {
		return "", err
	}
	a.Transformation = transform
	return a.String()
}
