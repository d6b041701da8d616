// Package api is the REST client for the teamsync backend. Every response
// uses a uniform envelope `{status, message, data}`; authenticated calls go
// through the RefreshTransport so token expiry never surfaces to callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/bnema/teamsync-cli/internal/ports"
	"github.com/charmbracelet/log"
)

const maxResponseBytes = 1 << 20

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenStore
}

var _ ports.TeamAPI = (*Client)(nil)

// NewClient builds a client whose transport refreshes expired access tokens
// transparently. base may be nil for the default transport.
func NewClient(baseURL string, tokens ports.TokenStore, base http.RoundTripper, logger *log.Logger) *Client {
	trimmed := strings.TrimRight(baseURL, "/")

	return &Client{
		baseURL: trimmed,
		tokens:  tokens,
		http: &http.Client{
			Transport: NewRefreshTransport(base, tokens, trimmed+"/auth/refresh", logger),
		},
	}
}

// SignIn exchanges credentials for a token pair and persists it.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignUp registers a new account; the backend signs the user in immediately
// and returns the same token payload as login.
func (c *Client) SignUp(ctx context.Context, name, email, password string) error {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, creds map[string]string) error {
	var payload tokenPayload
	if err := c.do(ctx, http.MethodPost, path, creds, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.AccessToken) == "" || strings.TrimSpace(payload.RefreshToken) == "" {
		return errors.New("auth response missing token fields")
	}

	if err := c.tokens.Save(ctx, domain.TokenPair{Access: payload.AccessToken, Refresh: payload.RefreshToken}); err != nil {
		return fmt.Errorf("persist token pair: %w", err)
	}

	return nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var payload userPayload
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &payload); err != nil {
		return domain.User{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) CreateTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	var payload teamPayload
	if err := c.do(ctx, http.MethodPost, "/teams", teamRequest(team), &payload); err != nil {
		return domain.Team{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) UpdateTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	var payload teamPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/teams/%d", team.ID), teamRequest(team), &payload); err != nil {
		return domain.Team{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) DeleteTeam(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/teams/%d", id), nil, nil)
}

func (c *Client) TeamByID(ctx context.Context, id int64) (domain.Team, error) {
	var payload teamPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/teams/%d", id), nil, &payload); err != nil {
		return domain.Team{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) Teams(ctx context.Context) ([]domain.Team, error) {
	var payloads []teamPayload
	if err := c.do(ctx, http.MethodGet, "/teams", nil, &payloads); err != nil {
		return nil, err
	}

	teams := make([]domain.Team, 0, len(payloads))
	for _, payload := range payloads {
		teams = append(teams, payload.toDomain())
	}
	return teams, nil
}

func (c *Client) AddMember(ctx context.Context, member domain.TeamMember) (domain.TeamMember, error) {
	var payload memberPayload
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/teams/%d/members", member.TeamID), memberRequest(member), &payload); err != nil {
		return domain.TeamMember{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) UpdateMember(ctx context.Context, member domain.TeamMember) (domain.TeamMember, error) {
	var payload memberPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/teams/%d/members/%d", member.TeamID, member.ID), memberRequest(member), &payload); err != nil {
		return domain.TeamMember{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) RemoveMember(ctx context.Context, teamID, memberID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/teams/%d/members/%d", teamID, memberID), nil, nil)
}

// do sends one request and decodes the envelope into out (which may be nil
// for operations without a payload).
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(data) > 0 {
		if err := json.Unmarshal(data, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response envelope: %w", err)
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(env.Message)
		if message == "" {
			message = strings.TrimSpace(string(data))
		}
		if isAuthFailure(resp.StatusCode) {
			return fmt.Errorf("%w: status %d: %s", domain.ErrSessionExpired, resp.StatusCode, message)
		}
		return fmt.Errorf("api status %d: %s", resp.StatusCode, message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response payload: %w", err)
	}

	return nil
}
