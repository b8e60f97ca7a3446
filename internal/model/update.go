package model

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which collection an update payload belongs to.
type Kind string

const (
	// KindUser tags a user update.
	KindUser Kind = "User"
	// KindMessage tags a message update.
	KindMessage Kind = "Message"
)

// Update is the typed payload of a server "updated_model" push event.
type Update struct {
	// Class is the entity kind tag.
	Class Kind `json:"class"`
	// Model is the raw entity representation.
	Model json.RawMessage `json:"model"`
}

// ParseUpdate parses a push event payload into a typed update. Socket.IO
// delivers payloads as generic maps, so this round-trips through JSON.
func ParseUpdate(v any) (*Update, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode update payload: %w", err)
	}
	var u Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode update payload: %w", err)
	}
	if u.Class == "" {
		return nil, fmt.Errorf("update payload missing class tag")
	}
	return &u, nil
}

// User decodes the payload as a user. Only valid when Class is KindUser.
func (u *Update) User() (*User, error) {
	var user User
	if err := json.Unmarshal(u.Model, &user); err != nil {
		return nil, fmt.Errorf("decode user update: %w", err)
	}
	return &user, nil
}

// Message decodes the payload as a message. Only valid when Class is
// KindMessage.
func (u *Update) Message() (*Message, error) {
	var msg Message
	if err := json.Unmarshal(u.Model, &msg); err != nil {
		return nil, fmt.Errorf("decode message update: %w", err)
	}
	return &msg, nil
}
