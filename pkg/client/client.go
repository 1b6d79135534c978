package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crowlands/crowlands/pkg/domain"
)

// TokenSource supplies the bearer token. It is consulted on every request so
// a login or logout elsewhere is picked up by the next call.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout for ordinary calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

// WithGenerateTimeout sets the timeout for AI generation calls, which run
// much longer than CRUD calls.
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *Client) { c.generateTimeout = d }
}

// Client is the Crowlands API client.
type Client struct {
	baseURL         string
	tokens          TokenSource
	httpClient      *http.Client
	requestTimeout  time.Duration
	generateTimeout time.Duration
}

// New creates a new API client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL:         baseURL,
		tokens:          tokens,
		httpClient:      &http.Client{},
		requestTimeout:  30 * time.Second,
		generateTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Auth ---

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Login exchanges email and password for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.post(ctx, "/api/auth/login", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, email, password, name string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.post(ctx, "/api/auth/register", credentials{Email: email, Password: password, Name: name}, &resp); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &resp, nil
}

// --- Account ---

// GetMe returns the authenticated user's account.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/users/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// SubscriptionStatus returns the authoritative tier and usage counters.
func (c *Client) SubscriptionStatus(ctx context.Context) (*domain.SubscriptionStatus, error) {
	var s domain.SubscriptionStatus
	if err := c.get(ctx, "/api/subscriptions/status", &s); err != nil {
		return nil, fmt.Errorf("client.SubscriptionStatus: %w", err)
	}
	return &s, nil
}

// Profile is the account plus its subscription status.
type Profile struct {
	User   *domain.User
	Status *domain.SubscriptionStatus
}

// LoadProfile fetches the account and subscription status in parallel.
func (c *Client) LoadProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := c.GetMe(gctx)
		p.User = u
		return err
	})
	g.Go(func() error {
		s, err := c.SubscriptionStatus(gctx)
		p.Status = s
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("client.LoadProfile: %w", err)
	}
	return &p, nil
}

// UpdateEmail changes the account email. The current password is required;
// a wrong password is a 401 and an email already in use is a 400.
func (c *Client) UpdateEmail(ctx context.Context, newEmail, currentPassword string) (*domain.User, error) {
	body := map[string]string{"new_email": newEmail, "current_password": currentPassword}
	var u domain.User
	if err := c.doRequest(ctx, http.MethodPatch, "/api/users/me/email", body, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateEmail: %w", err)
	}
	return &u, nil
}

// --- Generation ---

// GenerateSpell asks the backend for a spell. Anonymous calls are allowed
// and treated as free tier.
func (c *Client) GenerateSpell(ctx context.Context, req domain.SpellRequest) (*domain.GenerationResult, error) {
	var result domain.GenerationResult
	if err := c.generate(ctx, "/api/ai/generate-spell", req.Normalized(), &result); err != nil {
		return nil, fmt.Errorf("client.GenerateSpell: %w", err)
	}
	if result.Spell.IsZero() {
		return nil, fmt.Errorf("client.GenerateSpell: %w: no spell in body", ErrMalformedResponse)
	}
	return &result, nil
}

// CorrieTarot asks Corrie for a tarot reading.
func (c *Client) CorrieTarot(ctx context.Context, req domain.TarotRequest) (*domain.TarotResult, error) {
	var result domain.TarotResult
	if err := c.generate(ctx, "/api/ai/corrie-tarot", req, &result); err != nil {
		return nil, fmt.Errorf("client.CorrieTarot: %w", err)
	}
	return &result, nil
}

// SuggestWard asks for a ward against a concern.
func (c *Client) SuggestWard(ctx context.Context, req domain.WardRequest) (*domain.WardResult, error) {
	var result domain.WardResult
	if err := c.generate(ctx, "/api/ai/suggest-ward", req, &result); err != nil {
		return nil, fmt.Errorf("client.SuggestWard: %w", err)
	}
	return &result, nil
}

// --- Grimoire ---

// ListSpells returns the spells saved to the account's grimoire.
func (c *Client) ListSpells(ctx context.Context) ([]domain.SavedGrimoireEntry, error) {
	var entries []domain.SavedGrimoireEntry
	if err := c.get(ctx, "/api/grimoire/spells", &entries); err != nil {
		return nil, fmt.Errorf("client.ListSpells: %w", err)
	}
	return entries, nil
}

// SaveSpell saves a spell to the grimoire. Free accounts may get a 403
// feature_locked.
func (c *Client) SaveSpell(ctx context.Context, req domain.SaveSpellRequest) (*domain.SavedGrimoireEntry, error) {
	var entry domain.SavedGrimoireEntry
	if err := c.post(ctx, "/api/grimoire/spells", req, &entry); err != nil {
		return nil, fmt.Errorf("client.SaveSpell: %w", err)
	}
	return &entry, nil
}

// DeleteSpell removes a saved spell.
func (c *Client) DeleteSpell(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/grimoire/spells/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteSpell: %w", err)
	}
	return nil
}

// ListWards returns the wards saved to the account's grimoire.
func (c *Client) ListWards(ctx context.Context) ([]domain.SavedWard, error) {
	var wards []domain.SavedWard
	if err := c.get(ctx, "/api/grimoire/wards", &wards); err != nil {
		return nil, fmt.Errorf("client.ListWards: %w", err)
	}
	return wards, nil
}

// DeleteWard removes a saved ward.
func (c *Client) DeleteWard(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/grimoire/wards/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteWard: %w", err)
	}
	return nil
}

// --- Waitlist ---

// JoinWaitlist adds an email to the public waitlist. A duplicate signup is
// reported as ErrAlreadyOnWaitlist.
func (c *Client) JoinWaitlist(ctx context.Context, req domain.WaitlistRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("client.JoinWaitlist: %w", err)
	}
	err := c.post(ctx, "/api/waitlist/join", req, nil)
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusBadRequest || httpErr.StatusCode == http.StatusConflict) {
		return fmt.Errorf("client.JoinWaitlist: %w: %s", ErrAlreadyOnWaitlist, httpErr.Message)
	}
	return fmt.Errorf("client.JoinWaitlist: %w", err)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

// generate posts to an AI endpoint with the longer generation timeout.
func (c *Client) generate(ctx context.Context, path string, body any, out any) error {
	return c.send(ctx, c.generateTimeout, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	return c.send(ctx, c.requestTimeout, method, path, body, out)
}

func (c *Client) send(ctx context.Context, timeout time.Duration, method, path string, body any, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return parseHTTPError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

// parseHTTPError understands the three error bodies the backend produces:
// {"detail":{"error":..., "message":...}}, {"detail":"..."} and {"error":"..."}.
func parseHTTPError(status int, body []byte) *HTTPError {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return &HTTPError{StatusCode: status, Message: string(body)}
	}
	if len(envelope.Detail) > 0 {
		var structured struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Detail, &structured) == nil && (structured.Error != "" || structured.Message != "") {
			return &HTTPError{StatusCode: status, Code: structured.Error, Message: structured.Message}
		}
		var text string
		if json.Unmarshal(envelope.Detail, &text) == nil && text != "" {
			return &HTTPError{StatusCode: status, Message: text}
		}
	}
	if envelope.Error != "" {
		return &HTTPError{StatusCode: status, Message: envelope.Error}
	}
	return &HTTPError{StatusCode: status, Message: string(body)}
}
