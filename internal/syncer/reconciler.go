package syncer

import (
	"strings"

	"github.com/wrenchat/wren/internal/model"
	"github.com/wrenchat/wren/internal/store"
	"github.com/wrenchat/wren/pkg/logger"
)

// Renderer receives the incremental render notifications produced by the
// reconciler. Implementations redraw only the affected entity; nothing here
// triggers a full re-render.
type Renderer interface {
	// AtBottom reports whether the message region is scrolled to its bottom
	// edge. The reconciler samples this before applying a message update.
	AtBottom() bool
	// ScrollToBottom re-scrolls the message region to the bottom edge.
	ScrollToBottom()
	// InsertUserAfter renders a newly inserted user adjacent to the user
	// with id afterID in the nickname-sorted list. afterID zero means the
	// new user sorts first.
	InsertUserAfter(u *model.User, afterID int64)
	// UpdateUser re-renders an existing user in place.
	UpdateUser(u *model.User)
	// AppendMessage renders a newly inserted message at the end of the list.
	AppendMessage(m *model.Message)
	// UpdateMessage re-renders an existing message in place.
	UpdateMessage(m *model.Message)
}

// Reconciler applies incoming entities to the collections and triggers the
// matching one-entity render path.
//
// The reconciler is the sole writer of both collections. All Apply methods
// must be invoked from the app dispatcher; they are not safe for concurrent
// use with each other.
type Reconciler struct {
	users    *store.Collection[*model.User]
	messages *store.Collection[*model.Message]
	view     Renderer

	// stickToBottom carries the pre-upsert scroll decision into the change
	// notification. Valid because the reconciler is single-writer.
	stickToBottom bool
}

// NewUserCollection creates the nickname-sorted user collection.
func NewUserCollection() *store.Collection[*model.User] {
	return store.New[*model.User](func(a, b *model.User) int {
		return strings.Compare(a.Nickname, b.Nickname)
	})
}

// NewMessageCollection creates the insertion-ordered message collection.
func NewMessageCollection() *store.Collection[*model.Message] {
	return store.New[*model.Message](nil)
}

// NewReconciler wires a reconciler to its collections and render layer. The
// reconciler registers itself as the change consumer of both collections.
func NewReconciler(users *store.Collection[*model.User],
	messages *store.Collection[*model.Message], view Renderer) *Reconciler {

	r := &Reconciler{users: users, messages: messages, view: view}
	users.OnChange(r.onUserChange)
	messages.OnChange(r.onMessageChange)
	return r
}

// ApplyUser reconciles a single incoming user.
func (r *Reconciler) ApplyUser(u *model.User) error {
	if _, err := r.users.Upsert(u); err != nil {
		// Malformed entities are dropped locally, never surfaced.
		logger.Debugf("dropping user update: %v", err)
		return err
	}
	return nil
}

// ApplyMessage reconciles a single incoming message, preserving the
// stick-to-bottom reading position: if the message region was at its bottom
// edge before the update it is re-scrolled there after.
func (r *Reconciler) ApplyMessage(m *model.Message) error {
	r.stickToBottom = r.view.AtBottom()
	if _, err := r.messages.Upsert(m); err != nil {
		logger.Debugf("dropping message update: %v", err)
		return err
	}
	return nil
}

func (r *Reconciler) onUserChange(ch store.Change[*model.User]) {
	switch ch.Kind {
	case store.Created:
		r.view.InsertUserAfter(ch.Entity, r.previousUserID(ch.Entity.ID))
	case store.Updated:
		r.view.UpdateUser(ch.Entity)
	}
}

// previousUserID returns the id of the user that precedes id in nickname
// order, or zero when id sorts first.
func (r *Reconciler) previousUserID(id int64) int64 {
	idx := r.users.IndexOf(id)
	if idx <= 0 {
		return 0
	}
	prev, ok := r.users.At(idx - 1)
	if !ok {
		return 0
	}
	return prev.ID
}

func (r *Reconciler) onMessageChange(ch store.Change[*model.Message]) {
	switch ch.Kind {
	case store.Created:
		r.view.AppendMessage(ch.Entity)
	case store.Updated:
		r.view.UpdateMessage(ch.Entity)
	}
	if r.stickToBottom {
		r.view.ScrollToBottom()
	}
}
