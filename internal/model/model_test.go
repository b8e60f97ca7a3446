package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestUserMergeOverwritesPresentFields(t *testing.T) {
	u := &User{ID: 1, Nickname: "bob", UpdatedAt: 100, Online: boolPtr(true)}
	u.Merge(&User{ID: 1, UpdatedAt: 150, LastSeenAt: 140})

	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "bob", u.Nickname)
	require.Equal(t, int64(150), u.UpdatedAt)
	require.Equal(t, int64(140), u.LastSeenAt)
	require.True(t, u.IsOnline())
}

func TestUserMergeOnlineTransition(t *testing.T) {
	u := &User{ID: 1, Nickname: "bob", Online: boolPtr(true)}

	// A payload with online absent must not flip the flag.
	u.Merge(&User{ID: 1, Nickname: "bobby"})
	require.True(t, u.IsOnline())
	require.Equal(t, "bobby", u.Nickname)

	// An explicit false must flip it.
	u.Merge(&User{ID: 1, Online: boolPtr(false)})
	require.False(t, u.IsOnline())
}

func TestMessageMerge(t *testing.T) {
	m := &Message{ID: 5, Source: "hi", HTML: "<p>hi</p>", UpdatedAt: 50, UserID: 1}
	m.Merge(&Message{ID: 5, HTML: "<p>hi</p><blockquote>link</blockquote>", UpdatedAt: 60})

	require.Equal(t, "hi", m.Source)
	require.Equal(t, "<p>hi</p><blockquote>link</blockquote>", m.HTML)
	require.Equal(t, int64(60), m.UpdatedAt)
	require.Equal(t, int64(1), m.UserID)
}

func TestParseUpdateUser(t *testing.T) {
	payload := map[string]any{
		"class": "User",
		"model": map[string]any{
			"id": 3, "nickname": "alice", "updated_at": 123, "online": true,
		},
	}
	u, err := ParseUpdate(payload)
	require.NoError(t, err)
	require.Equal(t, KindUser, u.Class)

	user, err := u.User()
	require.NoError(t, err)
	require.Equal(t, int64(3), user.ID)
	require.Equal(t, "alice", user.Nickname)
	require.True(t, user.IsOnline())
}

func TestParseUpdateMessage(t *testing.T) {
	payload := map[string]any{
		"class": "Message",
		"model": map[string]any{
			"id": 5, "source": "hi", "html": "<p>hi</p>", "user_id": 3, "updated_at": 50,
		},
	}
	u, err := ParseUpdate(payload)
	require.NoError(t, err)
	require.Equal(t, KindMessage, u.Class)

	msg, err := u.Message()
	require.NoError(t, err)
	require.Equal(t, int64(5), msg.ID)
	require.Equal(t, "hi", msg.Source)
	require.Equal(t, int64(3), msg.UserID)
}

func TestParseUpdateMissingClass(t *testing.T) {
	_, err := ParseUpdate(map[string]any{"model": map[string]any{"id": 1}})
	require.Error(t, err)
}
