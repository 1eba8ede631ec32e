package microsoft

import (
	"context"
	"errors"
	"net/url"

	"github.com/AbelMSG89/json-synchronized/pkg/config"
	"github.com/AbelMSG89/json-synchronized/pkg/integrations"
	"github.com/AbelMSG89/json-synchronized/pkg/translate"
)

// Name is the backend identifier used in cache keys.
const Name = "microsoft"

const defaultBaseURL = "https://api.cognitive.microsofttranslator.com/translate"

var (
	// ErrMissingKey is returned when no subscription key is configured.
	ErrMissingKey = errors.New("microsoft: missing subscription key")
	// ErrMissingRegion is returned when no resource region is configured.
	ErrMissingRegion = errors.New("microsoft: missing region")
)

var languages = map[string]string{
	"zh":    "zh-Hans",
	"zh-cn": "zh-Hans",
	"zh-tw": "zh-Hant",
	"zh-hk": "zh-Hant",
	"pt":    "pt-br",
	"sr":    "sr-Latn",
}

type item struct {
	Text string `json:"text"`
}

type response []struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Client translates through Microsoft Translator.
// It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for a subscription key bound to region.
func NewClient(key, region string) *Client {
	headers := map[string]string{
		"Ocp-Apim-Subscription-Key":    key,
		"Ocp-Apim-Subscription-Region": region,
	}
	return &Client{
		Client:  integrations.NewClient(headers),
		baseURL: defaultBaseURL,
	}
}

// New adapts NewClient to a translate.Factory.
func New(creds config.Credentials) (translate.Translator, error) {
	switch {
	case creds.Key == "":
		return nil, ErrMissingKey
	case creds.Region == "":
		return nil, ErrMissingRegion
	}
	return NewClient(creds.Key, creds.Region), nil
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
	q := url.Values{}
	q.Set("api-version", "3.0")
	q.Set("from", source)
	q.Set("to", target)

	var resp response
	if err := c.PostJSON(ctx, c.baseURL+"?"+q.Encode(), nil, []item{{Text: text}}, &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 || len(resp[0].Translations) == 0 {
		return "", errors.New("microsoft: empty response")
	}
	return resp[0].Translations[0].Text, nil
}

// Normalize maps a language code onto Microsoft's codes.
func Normalize(code string) string {
	return translate.NormalizeCode(code, languages)
}
