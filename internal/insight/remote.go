package insight

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/hquan/babytrack/internal/util"
)

const requestTimeout = 30 * time.Second

// RemoteProvider calls a hosted language-model endpoint. The endpoint
// exposes POST /insights and POST /parse, both JSON in, JSON out.
type RemoteProvider struct {
	endpoint   string
	httpClient *http.Client
}

// NewRemoteProvider creates a provider for the given base endpoint.
func NewRemoteProvider(endpoint string) *RemoteProvider {
	return &RemoteProvider{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// GetInsight posts the recent history and decodes the triple.
func (p *RemoteProvider) GetInsight(ctx context.Context, req Request) (Insight, error) {
	body, err := p.post(ctx, p.endpoint+"/insights", req)
	if err != nil {
		return Insight{}, err
	}

	var result Insight
	if err := sonic.Unmarshal(body, &result); err != nil {
		return Insight{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Summary == "" || result.Prediction == "" || result.Tip == "" {
		return Insight{}, fmt.Errorf("%w: missing fields", ErrMalformedResponse)
	}

	return result, nil
}

// ParseEntry posts free text; a JSON null reply means no match.
func (p *RemoteProvider) ParseEntry(ctx context.Context, text string) (*ParsedEntry, error) {
	payload := struct {
		Text string `json:"text"`
	}{Text: text}

	body, err := p.post(ctx, p.endpoint+"/parse", payload)
	if err != nil {
		return nil, err
	}

	var parsed *ParsedEntry
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed != nil && !parsed.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown entry type %q", ErrMalformedResponse, parsed.Type)
	}

	return parsed, nil
}

// GetProviderName returns the name of this provider
func (p *RemoteProvider) GetProviderName() string {
	return "remote"
}

func (p *RemoteProvider) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		util.LogDebugf("Insight request to %s failed: %v", url, err)
		return nil, fmt.Errorf("insight request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
