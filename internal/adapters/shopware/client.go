package shopware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/phenrril/catalogseed/internal/domain"
)

const (
	tokenPath             = "/api/oauth/token"
	administrationClient  = "administration"
	storefrontChannelType = "8a243080f92e4c719546314b577cf82b"
	systemLanguageID      = "2fbb5fe2e29a4d70aa5854ce7ce3e20b"
)

type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Currency     string
	TaxName      string
	HTTPClient   *http.Client
}

// Store is a domain.CatalogStore on the Shopware 6 admin API.
type Store struct {
	baseURL  string
	http     *http.Client
	currency string
	taxName  string

	mu      sync.Mutex
	lookups *lookups
}

type lookups struct {
	currencyID     string
	taxID          string
	taxRate        float64
	salesChannelID string
}

func New(opts Options) (*Store, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("shopware base url: %w", domain.ErrMissingConfig)
	}
	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	tokenURL := baseURL + tokenPath

	var ts oauth2.TokenSource
	switch {
	case opts.Username != "":
		clientID := opts.ClientID
		if clientID == "" {
			clientID = administrationClient
		}
		cfg := &oauth2.Config{
			ClientID: clientID,
			Scopes:   []string{"write"},
			Endpoint: oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
		}
		ts = oauth2.ReuseTokenSource(nil, passwordSource{ctx: ctx, cfg: cfg, user: opts.Username, pass: opts.Password})
	case opts.ClientID != "" && opts.ClientSecret != "":
		cfg := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		ts = cfg.TokenSource(ctx)
	default:
		return nil, fmt.Errorf("shopware credentials: %w", domain.ErrMissingConfig)
	}

	currency := opts.Currency
	if currency == "" {
		currency = "EUR"
	}
	return &Store{
		baseURL:  baseURL,
		http:     oauth2.NewClient(ctx, ts),
		currency: currency,
		taxName:  opts.TaxName,
	}, nil
}

// passwordSource logs in again when the token expires; the admin API's
// refresh tokens are short lived anyway.
type passwordSource struct {
	ctx  context.Context
	cfg  *oauth2.Config
	user string
	pass string
}

func (s passwordSource) Token() (*oauth2.Token, error) {
	return s.cfg.PasswordCredentialsToken(s.ctx, s.user, s.pass)
}

type apiError struct {
	Errors []struct {
		Status string `json:"status"`
		Code   string `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (s *Store) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if path == syncPath {
		req.Header.Set("indexing-behavior", "use-queue-indexing")
	}

	res, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("shopware %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		var apiErr apiError
		if err := json.Unmarshal(raw, &apiErr); err == nil && len(apiErr.Errors) > 0 {
			details := make([]string, 0, len(apiErr.Errors))
			for _, e := range apiErr.Errors {
				d := e.Detail
				if d == "" {
					d = e.Title
				}
				details = append(details, d)
			}
			return fmt.Errorf("shopware %s %s (status %d): %s", method, path, res.StatusCode, strings.Join(details, "; "))
		}
		return fmt.Errorf("shopware %s %s (status %d): %s", method, path, res.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (s *Store) postJSON(ctx context.Context, path string, payload, out any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return s.do(ctx, http.MethodPost, path, nil, "application/json", bytes.NewReader(buf), out)
}

var errNoMatch = errors.New("no matching entity")
