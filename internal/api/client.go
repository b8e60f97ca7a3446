// Package api implements the REST side of the chat protocol: the resource
// endpoints for users, messages, and tokens, plus the request interceptor
// that stamps every outbound request with the current access token.
package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"

	"github.com/wrenchat/wren/internal/model"
	"github.com/wrenchat/wren/pkg/logger"
)

// defaultTimeout is the per-request timeout for all REST calls.
const defaultTimeout = 15 * time.Second

// TokenSource provides the current access token and accepts the
// authorization-failure observation from the interceptor.
type TokenSource interface {
	// Token returns the current token, or "" when unauthenticated.
	Token() string
	// Clear transitions the session to Unauthenticated.
	Clear()
}

// Client is the REST API client.
//
// Every outbound request carries the current token as a bearer credential
// when one is held, even on endpoints that do not require authorization:
// presenting the token is how the server learns the client is online. Any
// response with status 401 clears the token through the TokenSource.
type Client struct {
	http   *resty.Client
	tokens TokenSource
}

// NewClient creates a REST client for the given server base URL.
func NewClient(baseURL string, tokens TokenSource) *Client {
	c := &Client{tokens: tokens}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout)

	c.http.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		if token := c.tokens.Token(); token != "" {
			req.SetHeader("Authorization", "Bearer "+token)
		}
		return nil
	})

	c.http.AddResponseMiddleware(func(_ *resty.Client, res *resty.Response) error {
		if res.StatusCode() == http.StatusUnauthorized {
			logger.Debugf("request to %s was rejected as unauthorized, clearing token",
				res.Request.URL)
			c.tokens.Clear()
		}
		return nil
	})

	return c
}

// Close releases the underlying transport.
func (c *Client) Close() error { return c.http.Close() }

type usersResponse struct {
	Users []*model.User `json:"users"`
}

type messagesResponse struct {
	Messages []*model.Message `json:"messages"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// ListUsers fetches users updated since the given watermark, in the server's
// response order (ascending by updated_at).
func (c *Client) ListUsers(ctx context.Context, updatedSince int64) ([]*model.User, error) {
	var out usersResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("updated_since", fmt.Sprintf("%d", updatedSince)).
		SetResult(&out).
		Get("/api/users")
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", ErrTransient, err)
	}
	if err := statusError(res); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ListMessages fetches messages updated since the given watermark, in the
// server's response order (ascending by updated_at).
func (c *Client) ListMessages(ctx context.Context, updatedSince int64) ([]*model.Message, error) {
	var out messagesResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("updated_since", fmt.Sprintf("%d", updatedSince)).
		SetResult(&out).
		Get("/api/messages")
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", ErrTransient, err)
	}
	if err := statusError(res); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// CreateUser registers a new user and returns the created representation.
func (c *Client) CreateUser(ctx context.Context, nickname, password string) (*model.User, error) {
	var out model.User
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(&model.User{Nickname: nickname, Password: password}).
		SetResult(&out).
		Post("/api/users")
	if err != nil {
		return nil, fmt.Errorf("%w: create user: %v", ErrTransient, err)
	}
	if res.StatusCode() == http.StatusBadRequest {
		// The server rejects registrations for nicknames that already exist.
		return nil, fmt.Errorf("%w: nickname %q is taken", ErrCredentialRejected, nickname)
	}
	if err := statusError(res); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestToken exchanges basic credentials for an access token.
func (c *Client) RequestToken(ctx context.Context, nickname, password string) (string, error) {
	var out tokenResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", basicAuth(nickname, password)).
		SetResult(&out).
		Post("/api/tokens")
	if err != nil {
		return "", fmt.Errorf("%w: request token: %v", ErrTransient, err)
	}
	if res.StatusCode() == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: token request rejected", ErrCredentialRejected)
	}
	if err := statusError(res); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrTransient)
	}
	return out.Token, nil
}

// CreateMessage posts a new message over REST and returns the created
// representation. The normal posting path goes over the push channel; this
// exists for headless use and completeness of the resource API.
func (c *Client) CreateMessage(ctx context.Context, source string) (*model.Message, error) {
	var out model.Message
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(&model.Message{Source: source}).
		SetResult(&out).
		Post("/api/messages")
	if err != nil {
		return nil, fmt.Errorf("%w: create message: %v", ErrTransient, err)
	}
	if err := statusError(res); err != nil {
		return nil, err
	}
	return &out, nil
}

// statusError maps an error status to the client error taxonomy.
func statusError(res *resty.Response) error {
	switch {
	case res.StatusCode() == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s %s", ErrAuthFailure,
			res.Request.Method, res.Request.URL)
	case res.IsError():
		return fmt.Errorf("%w: %s %s returned %s", ErrTransient,
			res.Request.Method, res.Request.URL, res.Status())
	}
	return nil
}

// basicAuth builds a Basic authorization header value.
func basicAuth(nickname, password string) string {
	creds := base64.StdEncoding.EncodeToString([]byte(nickname + ":" + password))
	return "Basic " + creds
}
