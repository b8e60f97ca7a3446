// Package ui renders the chat surface: the message pane, the user sidebar,
// and the login and post forms. It is a pure view over the collections; all
// state changes arrive as render notifications from the sync engine.
package ui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wrenchat/wren/internal/model"
)

// userChangedMsg delivers a user render notification to the program.
type userChangedMsg struct {
	user    *model.User
	afterID int64
	created bool
}

// messageChangedMsg delivers a message render notification to the program.
type messageChangedMsg struct {
	msg     *model.Message
	created bool
}

// scrollBottomMsg asks the message pane to re-scroll to its bottom edge.
type scrollBottomMsg struct{}

// authChangedMsg delivers a session state transition to the program.
type authChangedMsg struct {
	authenticated bool
}

// Bridge adapts the reconciler's render notifications to the bubbletea
// message loop. It also mirrors the message pane's scroll position so the
// reconciler can sample it synchronously from the app dispatcher.
type Bridge struct {
	mu       sync.Mutex
	program  *tea.Program
	pending  []tea.Msg
	atBottom atomic.Bool
}

// NewBridge creates a detached bridge. Notifications sent before Attach are
// buffered and flushed once the program is known.
func NewBridge() *Bridge {
	b := &Bridge{}
	// An empty message pane counts as scrolled to the bottom.
	b.atBottom.Store(true)
	return b
}

// Attach binds the bridge to a running program and flushes anything buffered
// during startup.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, msg := range pending {
		p.Send(msg)
	}
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	if p == nil {
		b.pending = append(b.pending, msg)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	p.Send(msg)
}

// AtBottom reports the mirrored scroll position of the message pane.
func (b *Bridge) AtBottom() bool { return b.atBottom.Load() }

// setAtBottom updates the scroll mirror. Called by the view after every
// viewport interaction.
func (b *Bridge) setAtBottom(v bool) { b.atBottom.Store(v) }

// ScrollToBottom implements the renderer scroll request.
func (b *Bridge) ScrollToBottom() {
	b.atBottom.Store(true)
	b.send(scrollBottomMsg{})
}

// InsertUserAfter implements the renderer insert path for users.
func (b *Bridge) InsertUserAfter(u *model.User, afterID int64) {
	b.send(userChangedMsg{user: u, afterID: afterID, created: true})
}

// UpdateUser implements the renderer update path for users.
func (b *Bridge) UpdateUser(u *model.User) {
	b.send(userChangedMsg{user: u})
}

// AppendMessage implements the renderer insert path for messages.
func (b *Bridge) AppendMessage(m *model.Message) {
	b.send(messageChangedMsg{msg: m, created: true})
}

// UpdateMessage implements the renderer update path for messages.
func (b *Bridge) UpdateMessage(m *model.Message) {
	b.send(messageChangedMsg{msg: m})
}

// NotifyAuth forwards a session state transition into the program. Wired to
// the token manager's change notifications.
func (b *Bridge) NotifyAuth(authenticated bool) {
	b.send(authChangedMsg{authenticated: authenticated})
}
