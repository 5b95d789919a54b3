package repo

import (
	"context"
	"errors"

	"vera/internal/services/api/detect/domain"
)

// Fanout records to every sink and joins their errors
// a failing sink does not stop the others
type Fanout []domain.Recorder

// Record implements domain.Recorder
func (f Fanout) Record(ctx context.Context, rec domain.Record) error {
	var errs []error
	for _, r := range f {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
