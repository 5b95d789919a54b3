package module

import (
	"context"

	"vera/internal/adapters/cloudinary"
	"vera/internal/adapters/openai"
	"vera/internal/core/media"
	"vera/internal/services/api/detect/domain"
)

// objectStore adapts the cloudinary client to domain.ObjectStore
type objectStore struct{ c *cloudinary.Client }

// NewObjectStore exposes a cloudinary client as the detect object store
func NewObjectStore(c *cloudinary.Client) domain.ObjectStore { return objectStore{c: c} }

func (o objectStore) Configured() bool { return o.c.Configured() }

func (o objectStore) Upload(ctx context.Context, localPath, mime string) (domain.StoredObject, error) {
	a, err := o.c.Upload(ctx, localPath, mime)
	if err != nil {
		return domain.StoredObject{}, err
	}
	return domain.StoredObject{
		URL:              a.URL,
		PublicID:         a.PublicID,
		MediaType:        a.Kind,
		ResourceType:     a.ResourceType,
		OriginalFilename: a.OriginalFilename,
		Format:           a.Format,
		Size:             a.Bytes,
	}, nil
}

func (o objectStore) Remove(ctx context.Context, publicID, resourceType string) error {
	_, err := o.c.Remove(ctx, publicID, resourceType)
	return err
}

func (o objectStore) Ping(ctx context.Context) (string, error) { return o.c.Ping(ctx) }

// detector adapts the openai client to domain.Detector
type detector struct{ c *openai.Client }

// NewDetector exposes an openai client as the detect model
func NewDetector(c *openai.Client) domain.Detector { return detector{c: c} }

func (d detector) Configured() bool { return d.c.Configured() }

func (d detector) Model() string { return d.c.Model() }

// Analyze builds the prompt turn for content, calls the model and pulls out its text
func (d detector) Analyze(ctx context.Context, kind media.Kind, content string) (domain.ModelReply, error) {
	input := openai.BuildRequestInput(kind, openai.BuildContentBlock(kind, content))
	env, err := d.c.Invoke(ctx, input)
	if err != nil {
		return domain.ModelReply{}, err
	}
	return domain.ModelReply{Text: openai.ExtractText(env), Raw: env}, nil
}
