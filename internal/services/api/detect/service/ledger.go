package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"vera/internal/platform/logger"
)

// releaseTimeout bounds every release so a stuck provider cannot pin the request
const releaseTimeout = 30 * time.Second

type release struct {
	name      string
	onFailure bool
	fn        func(context.Context) error
}

// ledger tracks resources acquired while serving one request
// settle releases them in reverse acquisition order
type ledger struct {
	items []release
	log   *logger.Logger
}

func newLedger(log *logger.Logger) *ledger { return &ledger{log: log} }

// always registers a release that runs whatever the outcome
func (l *ledger) always(name string, fn func(context.Context) error) {
	l.items = append(l.items, release{name: name, fn: fn})
}

// onFailure registers a compensating release that runs only when the request failed
func (l *ledger) onFailure(name string, fn func(context.Context) error) {
	l.items = append(l.items, release{name: name, onFailure: true, fn: fn})
}

// settle runs the releases; their errors are logged and never returned
// it detaches from ctx cancellation so a dropped client still gets cleaned up after
func (l *ledger) settle(ctx context.Context, failed bool) {
	base := context.WithoutCancel(ctx)
	for i := len(l.items) - 1; i >= 0; i-- {
		it := l.items[i]
		if it.onFailure && !failed {
			continue
		}
		rctx, cancel := context.WithTimeout(base, releaseTimeout)
		err := it.fn(rctx)
		cancel()
		if err != nil {
			l.log.Warn().Err(err).Str("resource", it.name).Msg("release failed")
			continue
		}
		l.log.Debug().Str("resource", it.name).Bool("compensating", it.onFailure).Msg("released")
	}
	l.items = nil
}

// removeFile deletes a spooled upload; a file that is already gone is fine
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
