package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const maxFaultBody = 2048

// GeminiEndpoint calls a generateContent-style REST endpoint with an API key
// passed as the key query parameter.
type GeminiEndpoint struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewGeminiEndpoint returns an endpoint with its own HTTP client.
func NewGeminiEndpoint(endpointURL, apiKey string, timeout time.Duration) *GeminiEndpoint {
	return &GeminiEndpoint{
		URL:    endpointURL,
		APIKey: apiKey,
		Client: &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

func (g *GeminiEndpoint) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint, err := url.Parse(g.URL)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", g.APIKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := gjson.GetBytes(body, "error.message").String()
		if detail == "" {
			detail = strings.TrimSpace(clip(string(body)))
		}
		return "", &EndpointFault{Status: resp.StatusCode, Detail: detail}
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text")
	if !text.Exists() || text.String() == "" {
		return "", &FormatFault{Body: clip(string(body))}
	}
	return text.String(), nil
}

// clip cuts s to at most maxFaultBody bytes without splitting a rune.
func clip(s string) string {
	if len(s) <= maxFaultBody {
		return s
	}
	n := maxFaultBody
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
