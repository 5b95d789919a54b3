package repo

import (
	"context"

	"vera/internal/modkit/repokit"
	"vera/internal/platform/store"
)

// PGSchema creates the detection history table
const PGSchema = `
CREATE TABLE IF NOT EXISTS detections (
	id                   uuid PRIMARY KEY,
	client_id            text,
	request_id           text,
	source               text        NOT NULL,
	media_type           text        NOT NULL,
	deepfake_probability smallint    NOT NULL CHECK (deepfake_probability BETWEEN 0 AND 100),
	natural_probability  smallint    NOT NULL CHECK (natural_probability BETWEEN 0 AND 100),
	uncertain            boolean     NOT NULL DEFAULT false,
	overall              text        NOT NULL DEFAULT '',
	cloudinary_url       text,
	cloudinary_public_id text,
	model                text        NOT NULL DEFAULT '',
	latency_ms           bigint      NOT NULL DEFAULT 0,
	created_at           timestamptz NOT NULL DEFAULT now(),
	CHECK (deepfake_probability + natural_probability = 100)
);
CREATE INDEX IF NOT EXISTS detections_created_at_idx ON detections (created_at DESC);
CREATE INDEX IF NOT EXISTS detections_client_idx ON detections (client_id, created_at DESC) WHERE client_id IS NOT NULL;
`

// CHSchema creates the detection event table
const CHSchema = `
CREATE TABLE IF NOT EXISTS detection_events (
	event_id             UUID,
	ts                   DateTime64(3, 'UTC'),
	client_id            String,
	source               LowCardinality(String),
	media_type           LowCardinality(String),
	deepfake_probability UInt8,
	natural_probability  UInt8,
	uncertain            Bool,
	model                LowCardinality(String),
	latency_ms           UInt32
) ENGINE = MergeTree
ORDER BY (ts, event_id)
`

// schemaLockKey serializes concurrent migrations from several api replicas
const schemaLockKey int64 = 0x76657261 // "vera"

// MigratePG applies PGSchema in one transaction under an advisory lock; it is idempotent
func MigratePG(ctx context.Context, tx repokit.TxRunner) error {
	locked := repokit.WithBeginHooks(tx, lockSchema)
	return repokit.WithTx(ctx, locked, func(q repokit.Queryer) error {
		_, err := q.Exec(ctx, PGSchema)
		return err
	})
}

func lockSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", schemaLockKey)
	return err
}

// MigrateCH applies CHSchema; it is idempotent
func MigrateCH(ctx context.Context, ch store.Clickhouse) error {
	return ch.Exec(ctx, CHSchema)
}
