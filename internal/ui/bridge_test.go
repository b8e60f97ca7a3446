package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wrenchat/wren/internal/model"
)

func TestBridgeBuffersBeforeAttach(t *testing.T) {
	b := NewBridge()

	b.AppendMessage(&model.Message{ID: 1, Source: "hi"})
	b.InsertUserAfter(&model.User{ID: 2, Nickname: "alice"}, 0)
	b.NotifyAuth(true)

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.pending, 3)
	require.IsType(t, messageChangedMsg{}, b.pending[0])
	require.IsType(t, userChangedMsg{}, b.pending[1])
	require.IsType(t, authChangedMsg{}, b.pending[2])
}

func TestBridgeScrollMirror(t *testing.T) {
	b := NewBridge()
	// An empty pane counts as scrolled to the bottom.
	require.True(t, b.AtBottom())

	b.setAtBottom(false)
	require.False(t, b.AtBottom())

	// A scroll request makes the mirror reflect the outcome immediately,
	// before the view processes the message.
	b.ScrollToBottom()
	require.True(t, b.AtBottom())
}

func TestSidebarInsertAfter(t *testing.T) {
	c := &Chat{}

	c.insertUser(2, 0)  // first entry
	c.insertUser(5, 2)  // after 2
	c.insertUser(3, 2)  // between 2 and 5
	c.insertUser(1, 0)  // sorts first
	c.insertUser(3, 2)  // duplicate, no move
	c.insertUser(9, 42) // unknown neighbor falls back to the end

	require.Equal(t, []int64{1, 2, 3, 5, 9}, c.userOrder)
}
