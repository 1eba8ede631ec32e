package google

import (
	"context"
	"errors"
	"net/url"

	"github.com/AbelMSG89/json-synchronized/pkg/config"
	"github.com/AbelMSG89/json-synchronized/pkg/integrations"
	"github.com/AbelMSG89/json-synchronized/pkg/translate"
)

// Name is the backend identifier used in cache keys.
const Name = "google"

const defaultBaseURL = "https://translation.googleapis.com/language/translate/v2"

// ErrMissingKey is returned when no API key is configured.
var ErrMissingKey = errors.New("google: missing API key")

var languages = map[string]string{
	"zh":    "zh-CN",
	"zh-cn": "zh-CN",
	"zh-tw": "zh-TW",
	"zh-hk": "zh-TW",
	"sr":    "sr",
}

type request struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type response struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Client translates through Google Cloud Translation.
// It is safe for concurrent use.
type Client struct {
	*integrations.Client
	key     string
	project string
	baseURL string
}

// NewClient creates a client for the given API key. project is recorded
// for diagnostics; the v2 endpoint does not need it.
func NewClient(key, project string) *Client {
	return &Client{
		Client:  integrations.NewClient(nil),
		key:     key,
		project: project,
		baseURL: defaultBaseURL,
	}
}

// New adapts NewClient to a translate.Factory.
func New(creds config.Credentials) (translate.Translator, error) {
	if creds.Key == "" {
		return nil, ErrMissingKey
	}
	return NewClient(creds.Key, creds.Project), nil
}

// SetBaseURL points the client at another endpoint.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Name implements translate.Translator.
func (c *Client) Name() string { return Name }

// Translate implements translate.Translator.
func (c *Client) Translate(ctx context.Context, req translate.Request) (translate.Result, error) {
	return translate.EachTarget(ctx, req, Normalize, c.translateOne)
}

func (c *Client) translateOne(ctx context.Context, text, source, target string) (string, error) {
	endpoint := c.baseURL + "?key=" + url.QueryEscape(c.key)
	var resp response
	body := request{Q: text, Source: source, Target: target, Format: "text"}
	if err := c.PostJSON(ctx, endpoint, nil, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Data.Translations) == 0 {
		return "", errors.New("google: empty response")
	}
	return resp.Data.Translations[0].TranslatedText, nil
}

// Normalize maps a language code onto Google's codes.
func Normalize(code string) string {
	return translate.NormalizeCode(code, languages)
}
