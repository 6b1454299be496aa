// api — HTTP-клиент user-account API.
//
// Один вызов — один запрос: без ретраев и backoff. Неожиданный статус возвращается
// как *APIError, транспортные ошибки и ошибки разбора — обёрнутыми с op.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/account-client/internal/api/transport"
	"github.com/pribylovaa/account-client/internal/models"
)

// maxBody — верхняя граница читаемого тела ответа.
const maxBody = 1 << 20

// Options — параметры клиента.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
	// Base — нижний транспорт; nil — http.DefaultTransport.
	Base http.RoundTripper
}

// Client — клиент API с цепочкой транспорта metadata -> timeout -> logging.
type Client struct {
	base  *url.URL
	httpc *http.Client
}

// New создаёт клиент; BaseURL обязателен (например, http://localhost:8000/api/v1).
func New(opts Options) (*Client, error) {
	const op = "api.New"

	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: base url: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url %q must be absolute", op, opts.BaseURL)
	}

	rt := transport.Chain(opts.Base,
		transport.WithMetadata(opts.UserAgent),
		transport.WithTimeout(opts.Timeout),
		transport.WithLogging(opts.Logger),
	)

	return &Client{
		base: u,
		httpc: &http.Client{
			Transport: rt,
			// Редиректы API не использует; 3xx отдаём вызывающему как есть.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// Login — POST /users/login (application/x-www-form-urlencoded, OAuth2 password form).
// Ожидает 200 и пару токенов.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Tokens, error) {
	const op = "api.Login"

	form := url.Values{
		"grant_type":    {""},
		"username":      {email},
		"password":      {password},
		"scope":         {""},
		"client_id":     {""},
		"client_secret": {""},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/users/login", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out models.Tokens
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.AccessToken == "" {
		return nil, fmt.Errorf("%s: %w: empty access_token", op, ErrUnexpectedResponse)
	}

	return &out, nil
}

// Register — POST /users/register (JSON {email, password}). Ожидает 201.
func (c *Client) Register(ctx context.Context, email, password string) error {
	const op = "api.Register"

	body, err := json.Marshal(models.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/users/register", nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := c.do(req, http.StatusCreated, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Me — GET /users/me с Bearer-токеном. Ожидает 200 и профиль.
func (c *Client) Me(ctx context.Context, accessToken string) (*models.Profile, error) {
	const op = "api.Me"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/users/me", nil), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var out models.Profile
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Refresh — GET /users/refresh?refresh_token=... Ожидает 200 и новый access-токен.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.AccessToken, error) {
	const op = "api.Refresh"

	q := url.Values{"refresh_token": {refreshToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/users/refresh", q), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	var out models.AccessToken
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.AccessToken == "" {
		return nil, fmt.Errorf("%s: %w: empty access_token", op, ErrUnexpectedResponse)
	}

	return &out, nil
}

// do выполняет запрос; статус want декодируется в out (если out != nil),
// любой другой статус превращается в *APIError.
func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read_body: %w", err)
	}

	if resp.StatusCode != want {
		return parseAPIError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnexpectedResponse, err)
	}

	return nil
}
