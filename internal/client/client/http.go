package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/client/models"
	"github.com/dmitrijs2005/nyayguru/internal/common"
)

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 1 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewHTTPClient builds a client for the REST API rooted at baseURL
// (e.g. http://localhost:8000/api). tokens may be nil for anonymous use.
// A zero timeout leaves every request bounded by its context alone.
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type assertionRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

func (c *HTTPClient) ValidateToken(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/validate-token", nil, &u); err != nil {
		return nil, err
	}
	if !u.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, models.ErrMissingUser)
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, identifier, secret string) (*models.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", loginRequest{Email: identifier, Password: secret})
}

func (c *HTTPClient) LoginWithAssertion(ctx context.Context, a models.ExternalAssertion) (*models.AuthResult, error) {
	p := "/auth/" + url.PathEscape(strings.ToLower(a.Provider))
	return c.authenticate(ctx, p, assertionRequest{Provider: a.Provider, Token: a.Token})
}

func (c *HTTPClient) Register(ctx context.Context, p models.Profile) (*models.AuthResult, error) {
	body := p.Extra.Clone()
	set := func(k string, v any) {
		b, _ := json.Marshal(v)
		body[k] = b
	}
	set("username", p.DerivedUsername())
	if fn := p.FullName(); fn != "" {
		set("full_name", fn)
	}
	set("email", p.Email)
	set("password", p.Password)

	return c.authenticate(ctx, "/auth/register", body)
}

func (c *HTTPClient) UploadAvatar(ctx context.Context, a models.Avatar) (models.Record, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", path.Base(a.Filename))
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(a.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var rec models.Record
	if err := c.do(ctx, http.MethodPost, "/users/profile/avatar", &buf, mw.FormDataContentType(), &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: empty avatar response", ErrMalformedResponse)
	}
	return rec, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, patch models.Record) (models.Record, error) {
	var rec models.Record
	if err := c.doJSON(ctx, http.MethodPut, "/users/profile", patch, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: empty profile response", ErrMalformedResponse)
	}
	return rec, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/auth/test", nil, nil)
}

func (c *HTTPClient) authenticate(ctx context.Context, p string, req any) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.doJSON(ctx, http.MethodPost, p, req, &res); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &res, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, p string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, p, body, contentType, out)
}

func (c *HTTPClient) do(ctx context.Context, method, p string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token, err := c.token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return c.mapError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: detail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return fmt.Errorf("%w: empty body", ErrMalformedResponse)
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) token(ctx context.Context) (string, error) {
	if t, ok := TokenFromContext(ctx); ok {
		return t, nil
	}
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens.Token(ctx)
}

// mapError classifies transport failures; the cause stays in the chain so
// callers can still tell a deadline from a refused connection.
func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// detail extracts the FastAPI-style {"detail": ...} message.
func detail(body []byte) string {
	var d struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &d); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(d.Detail) > 0 {
		var s string
		if err := json.Unmarshal(d.Detail, &s); err == nil {
			return s
		}
		return string(d.Detail)
	}
	return d.Message
}
