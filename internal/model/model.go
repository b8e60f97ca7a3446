// Package model defines the wire and in-memory representation of the two
// server-owned collections: users and messages.
//
// Timestamps are integer Unix seconds assigned by the server. `updated_at` is
// non-decreasing per entity and drives the incremental sync cursors.
package model

// User is the user resource representation.
type User struct {
	// ID is the server-assigned user id. Zero means not yet persisted.
	ID int64 `json:"id"`
	// CreatedAt is the creation timestamp.
	CreatedAt int64 `json:"created_at,omitempty"`
	// UpdatedAt is the last-modification timestamp.
	UpdatedAt int64 `json:"updated_at,omitempty"`
	// LastSeenAt is the last time the server saw this user.
	LastSeenAt int64 `json:"last_seen_at,omitempty"`
	// Nickname is the unique display name. It also determines the display
	// order of the user list.
	Nickname string `json:"nickname,omitempty"`
	// Online reports whether the server currently considers the user online.
	// A nil value means the field was absent from the payload.
	Online *bool `json:"online,omitempty"`
	// Password is only ever set on outbound registration payloads. The
	// server never returns it.
	Password string `json:"password,omitempty"`
}

// Key returns the store identifier for the user.
func (u *User) Key() int64 { return u.ID }

// Touched returns the last-modification timestamp.
func (u *User) Touched() int64 { return u.UpdatedAt }

// IsOnline reports the online flag, treating an absent field as offline.
func (u *User) IsOnline() bool { return u.Online != nil && *u.Online }

// Merge applies incoming non-absent fields over the receiver. The id is
// immutable and never overwritten.
func (u *User) Merge(in *User) {
	if in.CreatedAt != 0 {
		u.CreatedAt = in.CreatedAt
	}
	if in.UpdatedAt != 0 {
		u.UpdatedAt = in.UpdatedAt
	}
	if in.LastSeenAt != 0 {
		u.LastSeenAt = in.LastSeenAt
	}
	if in.Nickname != "" {
		u.Nickname = in.Nickname
	}
	if in.Online != nil {
		online := *in.Online
		u.Online = &online
	}
}

// Message is the message resource representation.
type Message struct {
	// ID is the server-assigned message id. Zero means not yet persisted.
	ID int64 `json:"id"`
	// CreatedAt is the creation timestamp.
	CreatedAt int64 `json:"created_at,omitempty"`
	// UpdatedAt is the last-modification timestamp. The server bumps it when
	// it re-renders a message (for example after expanding links).
	UpdatedAt int64 `json:"updated_at,omitempty"`
	// Source is the raw markdown text the user typed.
	Source string `json:"source,omitempty"`
	// HTML is the server-rendered body.
	HTML string `json:"html,omitempty"`
	// UserID is the id of the owning user.
	UserID int64 `json:"user_id,omitempty"`
}

// Key returns the store identifier for the message.
func (m *Message) Key() int64 { return m.ID }

// Touched returns the last-modification timestamp.
func (m *Message) Touched() int64 { return m.UpdatedAt }

// Merge applies incoming non-absent fields over the receiver. The id is
// immutable and never overwritten.
func (m *Message) Merge(in *Message) {
	if in.CreatedAt != 0 {
		m.CreatedAt = in.CreatedAt
	}
	if in.UpdatedAt != 0 {
		m.UpdatedAt = in.UpdatedAt
	}
	if in.Source != "" {
		m.Source = in.Source
	}
	if in.HTML != "" {
		m.HTML = in.HTML
	}
	if in.UserID != 0 {
		m.UserID = in.UserID
	}
}
