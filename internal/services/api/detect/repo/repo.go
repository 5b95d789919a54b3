// Package repo provides the detection history repositories
package repo

import (
	"context"

	"vera/internal/core/media"
	"vera/internal/modkit/repokit"
	perr "vera/internal/platform/errors"
	"vera/internal/platform/store"
	pstrings "vera/internal/platform/strings"
	"vera/internal/services/api/detect/domain"
)

// Repo is the history persistence surface used by the service layer
type Repo interface {
	Record(ctx context.Context, rec domain.Record) error
	List(ctx context.Context, q domain.ListQuery) ([]domain.Record, error)
}

type (
	// PG is a Postgres implementation of the history repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: repokit.RequireQueryer(q)} }

// Record inserts one completed detection
func (r *queries) Record(ctx context.Context, rec domain.Record) error {
	const sql = `
		INSERT INTO detections (
			id, client_id, request_id, source, media_type,
			deepfake_probability, natural_probability, uncertain, overall,
			cloudinary_url, cloudinary_public_id, model, latency_ms, created_at
		) VALUES (
			$1::uuid, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14
		)
		ON CONFLICT (id) DO NOTHING
	`
	err := store.ExecOne(ctx, r.q, sql,
		rec.ID, pstrings.SQLNull(rec.ClientID), pstrings.SQLNull(rec.RequestID), string(rec.Source), string(rec.MediaType),
		rec.DeepfakeProbability, rec.NaturalProbability, rec.Uncertain, rec.Overall,
		pstrings.SQLNull(rec.CloudinaryURL), pstrings.SQLNull(rec.CloudinaryPublicID), rec.Model, rec.LatencyMS, rec.CreatedAt,
	)
	if err != nil {
		return perr.FromPostgres(err, "insert detection")
	}
	return nil
}

// List returns the newest detections, optionally for one client
func (r *queries) List(ctx context.Context, q domain.ListQuery) ([]domain.Record, error) {
	const sql = `
		SELECT id::text, COALESCE(client_id, ''), COALESCE(request_id, ''), source, media_type,
		       deepfake_probability, natural_probability, uncertain, overall,
		       COALESCE(cloudinary_url, ''), COALESCE(cloudinary_public_id, ''), model, latency_ms, created_at
		  FROM detections
		 WHERE ($1::text IS NULL OR client_id = $1)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2
	`
	out, err := store.Many(ctx, r.q, scanRecord, sql, pstrings.SQLNull(q.ClientID), q.Limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list detections")
	}
	if out == nil {
		out = []domain.Record{}
	}
	return out, nil
}

func scanRecord(row store.Row) (domain.Record, error) {
	var (
		rec       domain.Record
		src, kind string
	)
	err := row.Scan(
		&rec.ID, &rec.ClientID, &rec.RequestID, &src, &kind,
		&rec.DeepfakeProbability, &rec.NaturalProbability, &rec.Uncertain, &rec.Overall,
		&rec.CloudinaryURL, &rec.CloudinaryPublicID, &rec.Model, &rec.LatencyMS, &rec.CreatedAt,
	)
	rec.Source = domain.Source(src)
	rec.MediaType = media.ParseKind(kind)
	return rec, err
}
