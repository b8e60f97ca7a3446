package syncer

import (
	"github.com/wrenchat/wren/internal/model"
	"github.com/wrenchat/wren/pkg/logger"
)

// Dispatcher routes updated_model push events to the reconciler by entity
// kind.
type Dispatcher struct {
	rec *Reconciler
}

// NewDispatcher creates a dispatcher feeding the given reconciler.
func NewDispatcher(rec *Reconciler) *Dispatcher {
	return &Dispatcher{rec: rec}
}

// HandlePush consumes a raw updated_model payload. Unknown kinds and
// malformed payloads are logged and dropped; pushes are at-least-once and
// the poll loop will pick the entity up anyway.
func (d *Dispatcher) HandlePush(data map[string]any) {
	update, err := model.ParseUpdate(data)
	if err != nil {
		logger.Warnf("dropping malformed push event: %v", err)
		return
	}

	switch update.Class {
	case model.KindUser:
		u, err := update.User()
		if err != nil {
			logger.Warnf("dropping user push: %v", err)
			return
		}
		_ = d.rec.ApplyUser(u)
	case model.KindMessage:
		m, err := update.Message()
		if err != nil {
			logger.Warnf("dropping message push: %v", err)
			return
		}
		_ = d.rec.ApplyMessage(m)
	default:
		logger.Warnf("dropping push event for unknown class %q", update.Class)
	}
}
