package api

import (
	"bytes"
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

const (
	// RefreshedHeader marks a request that already went through one
	// refresh-and-retry cycle. Its presence stops any further refresh.
	RefreshedHeader = "X-Refreshed"

	maxRefreshResponseBytes = 1 << 20
)

// authExemptPaths never get a bearer header and never trigger a refresh,
// whatever their response status.
var authExemptPaths = []string{"/auth/login", "/auth/register", "/auth/refresh"}

// RefreshTransport wraps a base RoundTripper and makes access-token expiry
// invisible to callers: a 401/403 response triggers one synchronous refresh
// against the token endpoint followed by one retry of the original request.
// A retried request that fails again with 401/403 is returned as-is.
//
// Two concurrent 401s each run their own refresh; the refreshes are not
// coalesced. The last saved pair wins, which is harmless since any freshly
// minted pair is valid.
type RefreshTransport struct {
	base       http.RoundTripper
	tokens     ports.TokenStore
	refreshURL string
	logger     *log.Logger
}

var _ http.RoundTripper = (*RefreshTransport)(nil)

func NewRefreshTransport(base http.RoundTripper, tokens ports.TokenStore, refreshURL string, logger *log.Logger) *RefreshTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &RefreshTransport{
		base:       base,
		tokens:     tokens,
		refreshURL: refreshURL,
		logger:     logger,
	}
}

func (t *RefreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isAuthExempt(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	pair, err := t.tokens.Get(req.Context())
	if err != nil && !errors.Is(err, domain.ErrNotSignedIn) {
		// A broken token store must not mask the underlying call: send the
		// request untouched so the caller observes the real outcome.
		t.logger.Warn("token store read failed, sending request unauthenticated", "err", err)
		return t.base.RoundTrip(req)
	}

	authed := req
	if pair.Access != "" {
		authed = req.Clone(req.Context())
		authed.Header.Set("Authorization", "Bearer "+pair.Access)
	}

	resp, err := t.base.RoundTrip(authed)
	if err != nil {
		return nil, err
	}
	if !isAuthFailure(resp.StatusCode) {
		return resp, nil
	}
	if req.Header.Get(RefreshedHeader) != "" {
		return resp, nil
	}

	refreshed, ok := t.refresh(req, pair.Refresh)
	if !ok {
		return resp, nil
	}

	retry, ok := t.rebuildForRetry(req, refreshed.Access)
	if !ok {
		return resp, nil
	}

	drainAndClose(resp)

	retryResp, err := t.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	return retryResp, nil
}

// refresh exchanges the stored refresh token for a new pair and persists it.
// Any failure invalidates the session conservatively: the store is cleared
// so the next auth check sees a signed-out state.
func (t *RefreshTransport) refresh(orig *http.Request, refreshToken string) (domain.TokenPair, bool) {
	if strings.TrimSpace(refreshToken) == "" {
		return domain.TokenPair{}, false
	}

	pair, err := t.callRefreshEndpoint(orig, refreshToken)
	if err != nil {
		t.logger.Warn("token refresh failed, clearing session", "err", err)
		if clearErr := t.tokens.Clear(orig.Context()); clearErr != nil {
			t.logger.Error("clear token store", "err", clearErr)
		}
		return domain.TokenPair{}, false
	}

	if err := t.tokens.Save(orig.Context(), pair); err != nil {
		t.logger.Error("persist refreshed tokens", "err", err)
		return domain.TokenPair{}, false
	}

	return pair, true
}

func (t *RefreshTransport) callRefreshEndpoint(orig *http.Request, refreshToken string) (domain.TokenPair, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(orig.Context(), http.MethodPost, t.refreshURL, bytes.NewReader(body))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("call refresh endpoint: %w", err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.TokenPair{}, fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRefreshResponseBytes)).Decode(&env); err != nil {
		return domain.TokenPair{}, fmt.Errorf("decode refresh response: %w", err)
	}

	var payload tokenPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return domain.TokenPair{}, fmt.Errorf("decode refresh payload: %w", err)
		}
	}
	if strings.TrimSpace(payload.AccessToken) == "" || strings.TrimSpace(payload.RefreshToken) == "" {
		return domain.TokenPair{}, errors.New("refresh response missing token fields")
	}

	return domain.TokenPair{Access: payload.AccessToken, Refresh: payload.RefreshToken}, nil
}

// rebuildForRetry clones the original request with the fresh access token and
// the retry marker. Requests whose body cannot be replayed are not retried.
func (t *RefreshTransport) rebuildForRetry(req *http.Request, access string) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	retry.Header.Set("Authorization", "Bearer "+access)
	retry.Header.Set(RefreshedHeader, "true")

	if req.Body == nil {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		t.logger.Warn("rewind request body for retry", "err", err)
		return nil, false
	}
	retry.Body = body

	return retry, true
}

func isAuthExempt(path string) bool {
	for _, exempt := range authExemptPaths {
		if strings.HasSuffix(path, exempt) {
			return true
		}
	}
	return false
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRefreshResponseBytes))
	_ = resp.Body.Close()
}
