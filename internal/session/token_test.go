package session

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	mu     sync.Mutex
	tokens []string
}

func (p *fakePinger) PingUser(token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, token)
	return nil
}

func (p *fakePinger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tokens)
}

func (p *fakePinger) last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tokens) == 0 {
		return ""
	}
	return p.tokens[len(p.tokens)-1]
}

func TestTransitionsNotifyExactlyOnce(t *testing.T) {
	m := NewManager(&fakePinger{}, time.Hour)
	defer m.Close()

	var notified []string
	m.OnChange(func(token string) { notified = append(notified, token) })

	m.SetToken("abc")
	m.SetToken("abc") // re-entry, no notification
	m.Clear()
	m.Clear() // already absent, no notification

	require.Equal(t, []string{"abc", ""}, notified)
	require.False(t, m.Authenticated())
}

func TestLivenessLoopLifecycle(t *testing.T) {
	p := &fakePinger{}
	m := NewManager(p, 5*time.Millisecond)
	defer m.Close()

	m.SetToken("abc")
	require.True(t, m.livenessActive())
	// Immediate ping plus at least one interval tick.
	require.Eventually(t, func() bool { return p.count() >= 2 },
		2*time.Second, time.Millisecond)
	require.Equal(t, "abc", p.last())

	m.Clear()
	require.False(t, m.livenessActive())
}

func TestOneLoopAfterRepeatedTransitions(t *testing.T) {
	p := &fakePinger{}
	m := NewManager(p, time.Hour)
	defer m.Close()

	for _, token := range []string{"a", "b", "c"} {
		m.SetToken(token)
	}
	require.True(t, m.livenessActive())
	// Only the immediate pings fired; one per transition.
	require.Equal(t, 3, p.count())
	require.Equal(t, "c", p.last())

	m.Clear()
	require.False(t, m.livenessActive())
}

func TestTokenChangeCancelsPreviousLoop(t *testing.T) {
	p := &fakePinger{}
	m := NewManager(p, 5*time.Millisecond)
	defer m.Close()

	m.SetToken("old")
	m.SetToken("new")

	require.Eventually(t, func() bool { return p.count() >= 4 },
		2*time.Second, time.Millisecond)
	// After the swap no ping may carry the old token.
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, token := range p.tokens[2:] {
		require.Equal(t, "new", token)
	}
}

func TestTokenPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.key")

	token, err := LoadToken(path)
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, SaveToken(path, "abc"))
	token, err = LoadToken(path)
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	require.NoError(t, RemoveToken(path))
	require.NoError(t, RemoveToken(path))
	token, err = LoadToken(path)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": now.Add(-time.Minute).Unix(),
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	exp, ok := TokenExpiry(signed)
	require.True(t, ok)
	require.WithinDuration(t, now.Add(-time.Minute), exp, time.Second)
	require.True(t, TokenExpired(signed, now))

	// Opaque tokens are never provably expired.
	require.False(t, TokenExpired("deadbeefcafe", now))
	_, ok = TokenExpiry("deadbeefcafe")
	require.False(t, ok)
}
