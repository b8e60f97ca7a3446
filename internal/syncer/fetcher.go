package syncer

import (
	"context"
	"fmt"

	"github.com/wrenchat/wren/internal/model"
	"github.com/wrenchat/wren/pkg/logger"
)

// Lister is the slice of the REST client the fetcher needs.
type Lister interface {
	ListUsers(ctx context.Context, updatedSince int64) ([]*model.User, error)
	ListMessages(ctx context.Context, updatedSince int64) ([]*model.Message, error)
}

// Fetcher pulls incremental updates since a per-collection watermark and
// feeds them to the reconciler in response order.
//
// A failed refresh leaves the watermark untouched; callers simply retry at
// the next scheduled interval. There is no built-in backoff.
type Fetcher struct {
	api Lister
	rec *Reconciler

	users    Cursor
	messages Cursor
}

// NewFetcher creates a fetcher feeding the given reconciler.
func NewFetcher(api Lister, rec *Reconciler) *Fetcher {
	return &Fetcher{api: api, rec: rec}
}

// RefreshUsers fetches users updated since the user watermark, reconciles
// them in response order, and advances the watermark to the last entity's
// updated_at. An empty batch leaves the watermark unchanged.
func (f *Fetcher) RefreshUsers(ctx context.Context) error {
	batch, err := f.api.ListUsers(ctx, f.users.Value())
	if err != nil {
		logger.Debugf("user refresh failed, retrying next tick: %v", err)
		return fmt.Errorf("refresh users: %w", err)
	}
	for _, u := range batch {
		// Reconciliation failures are per-entity and already logged.
		_ = f.rec.ApplyUser(u)
	}
	for _, u := range batch {
		f.users.Advance(u.UpdatedAt)
	}
	return nil
}

// RefreshMessages fetches messages updated since the message watermark,
// reconciles them in response order, and advances the watermark.
func (f *Fetcher) RefreshMessages(ctx context.Context) error {
	batch, err := f.api.ListMessages(ctx, f.messages.Value())
	if err != nil {
		logger.Debugf("message refresh failed, retrying next tick: %v", err)
		return fmt.Errorf("refresh messages: %w", err)
	}
	for _, m := range batch {
		_ = f.rec.ApplyMessage(m)
	}
	for _, m := range batch {
		f.messages.Advance(m.UpdatedAt)
	}
	return nil
}

// InitialSync populates both collections. Users go first: messages render
// their author from the user collection.
func (f *Fetcher) InitialSync(ctx context.Context) error {
	if err := f.RefreshUsers(ctx); err != nil {
		return err
	}
	return f.RefreshMessages(ctx)
}

// UsersCursor returns the current user watermark.
func (f *Fetcher) UsersCursor() int64 { return f.users.Value() }

// MessagesCursor returns the current message watermark.
func (f *Fetcher) MessagesCursor() int64 { return f.messages.Value() }
