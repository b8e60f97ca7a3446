package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wrenchat/wren/internal/model"
)

func userCmp(a, b *model.User) int { return strings.Compare(a.Nickname, b.Nickname) }

func TestUpsertCreateThenUpdate(t *testing.T) {
	c := New[*model.User](userCmp)

	change, err := c.Upsert(&model.User{ID: 1, Nickname: "bob", UpdatedAt: 100})
	require.NoError(t, err)
	require.Equal(t, Created, change.Kind)
	require.Equal(t, 1, c.Len())

	change, err = c.Upsert(&model.User{ID: 1, UpdatedAt: 150, LastSeenAt: 140})
	require.NoError(t, err)
	require.Equal(t, Updated, change.Kind)
	require.Equal(t, 1, c.Len())

	u, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, "bob", u.Nickname)
	require.Equal(t, int64(150), u.UpdatedAt)
	require.Equal(t, int64(140), u.LastSeenAt)
}

func TestUpsertRejectsMissingID(t *testing.T) {
	c := New[*model.User](userCmp)
	var notified int
	c.OnChange(func(Change[*model.User]) { notified++ })

	_, err := c.Upsert(&model.User{Nickname: "ghost"})
	require.ErrorIs(t, err, ErrInvalidEntity)
	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, notified)
}

func TestNicknameOrderedInsert(t *testing.T) {
	c := New[*model.User](userCmp)
	for _, u := range []*model.User{
		{ID: 1, Nickname: "mallory"},
		{ID: 2, Nickname: "alice"},
		{ID: 3, Nickname: "zed"},
		{ID: 4, Nickname: "bob"},
	} {
		_, err := c.Upsert(u)
		require.NoError(t, err)
	}

	var got []string
	for u := range c.All() {
		got = append(got, u.Nickname)
	}
	require.Equal(t, []string{"alice", "bob", "mallory", "zed"}, got)

	require.Equal(t, 0, c.IndexOf(2))
	require.Equal(t, 3, c.IndexOf(3))
}

func TestUpdateKeepsPosition(t *testing.T) {
	c := New[*model.User](userCmp)
	_, err := c.Upsert(&model.User{ID: 1, Nickname: "alice"})
	require.NoError(t, err)
	_, err = c.Upsert(&model.User{ID: 2, Nickname: "bob"})
	require.NoError(t, err)

	// Renaming does not move the entity; order is fixed at insert time.
	_, err = c.Upsert(&model.User{ID: 1, Nickname: "zoe"})
	require.NoError(t, err)
	require.Equal(t, 0, c.IndexOf(1))
}

func TestMessagesKeepInsertionOrder(t *testing.T) {
	c := New[*model.Message](nil)
	for _, m := range []*model.Message{
		{ID: 3, Source: "third", UpdatedAt: 30},
		{ID: 1, Source: "first", UpdatedAt: 40},
		{ID: 2, Source: "second", UpdatedAt: 50},
	} {
		_, err := c.Upsert(m)
		require.NoError(t, err)
	}

	var got []int64
	for m := range c.All() {
		got = append(got, m.ID)
	}
	require.Equal(t, []int64{3, 1, 2}, got)
}

func TestOneNotificationPerUpsert(t *testing.T) {
	c := New[*model.Message](nil)
	var changes []Change[*model.Message]
	c.OnChange(func(ch Change[*model.Message]) { changes = append(changes, ch) })

	_, err := c.Upsert(&model.Message{ID: 5, Source: "hi", UpdatedAt: 50})
	require.NoError(t, err)
	_, err = c.Upsert(&model.Message{ID: 5, Source: "hi", UpdatedAt: 50})
	require.NoError(t, err)

	require.Len(t, changes, 2)
	require.Equal(t, Created, changes[0].Kind)
	require.Equal(t, Updated, changes[1].Kind)
	// Idempotent second merge: one stored entity, unchanged size.
	require.Equal(t, 1, c.Len())
}

func TestAllIsRestartable(t *testing.T) {
	c := New[*model.Message](nil)
	for id := int64(1); id <= 3; id++ {
		_, err := c.Upsert(&model.Message{ID: id})
		require.NoError(t, err)
	}

	seq := c.All()
	var first, second int
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	require.Equal(t, 3, first)
	require.Equal(t, 3, second)
}
