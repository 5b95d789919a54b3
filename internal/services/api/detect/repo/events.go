package repo

import (
	"context"

	"vera/internal/platform/store"
	"vera/internal/services/api/detect/domain"

	"github.com/google/uuid"
)

// EventsTable receives one row per completed detection
const EventsTable = "detection_events"

// Events writes detection events to clickhouse for analytics
type Events struct{ ch store.Clickhouse }

// NewEvents builds an event sink over the clickhouse seam
func NewEvents(ch store.Clickhouse) *Events {
	if ch == nil {
		panic("detect events: nil clickhouse")
	}
	return &Events{ch: ch}
}

// Record appends the detection as an event row
// column order matches CHSchema
func (e *Events) Record(ctx context.Context, rec domain.Record) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		id = uuid.New()
	}
	row := []any{
		id,
		rec.CreatedAt.UTC(),
		rec.ClientID,
		string(rec.Source),
		string(rec.MediaType),
		uint8(rec.DeepfakeProbability),
		uint8(rec.NaturalProbability),
		rec.Uncertain,
		rec.Model,
		uint32(max(rec.LatencyMS, 0)),
	}
	return e.ch.Insert(ctx, EventsTable, [][]any{row})
}
