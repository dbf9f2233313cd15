package replicate

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

	"studio/internal/domain"
	"studio/internal/infra"
)

// Options configures the Replicate client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	// PollInterval and MaxPolls bound the wait for a prediction that is still
	// running after the initial blocking request returns.
	PollInterval time.Duration
	MaxPolls     int
}

// Client runs predictions against the Replicate HTTP API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *infra.Logger
	pollInterval time.Duration
	maxPolls     int
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	maxPolls := opts.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 300
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

// Generate runs the model selected by req.Model and returns its first output
// as a MediaReference. req is expected to be normalized and validated.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest, credential string) (domain.MediaReference, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.MediaReference{}, fmt.Errorf("replicate: %w", domain.ErrAuth)
	}
	spec, err := domain.LookupModel(req.Model)
	if err != nil {
		return domain.MediaReference{}, err
	}

	body, err := json.Marshal(predictionRequest{Input: BuildInput(spec, req)})
	if err != nil {
		return domain.MediaReference{}, fmt.Errorf("replicate: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s/%s/predictions", c.baseURL, url.PathEscape(spec.Owner()), url.PathEscape(spec.Name()))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.MediaReference{}, fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Prefer", "wait")

	pred, err := c.do(httpReq, credential)
	if err != nil {
		return domain.MediaReference{}, err
	}
	c.logger.Debug().
		Str("model", spec.Ref).
		Str("prediction_id", pred.ID).
		Str("status", string(pred.Status)).
		Msg("replicate: prediction created")

	pred, err = c.await(ctx, pred, credential)
	if err != nil {
		return domain.MediaReference{}, err
	}

	ref, err := domain.NormalizeOutput(pred.Output)
	if err != nil {
		c.logger.Warn().Str("prediction_id", pred.ID).Interface("output", pred.Output).Msg("replicate: unexpected output")
		return domain.MediaReference{}, err
	}
	c.logger.Info().
		Str("model", spec.Ref).
		Str("prediction_id", pred.ID).
		Str("reference", ref.Kind.String()).
		Msg("replicate: prediction succeeded")
	return ref, nil
}

// await polls a running prediction a fixed number of times.
func (c *Client) await(ctx context.Context, pred *prediction, credential string) (*prediction, error) {
	for polls := 0; !pred.Status.Terminal(); polls++ {
		if polls >= c.maxPolls {
			return nil, fmt.Errorf("replicate: prediction %s still %s after %d polls: %w", pred.ID, pred.Status, polls, domain.ErrTimeout)
		}
		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		getURL := c.pollURL(pred)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
		if err != nil {
			return nil, fmt.Errorf("replicate: build poll request: %w", err)
		}
		next, err := c.do(req, credential)
		if err != nil {
			return nil, err
		}
		pred = next
	}
	switch pred.Status {
	case StatusFailed:
		return nil, fmt.Errorf("replicate: prediction %s failed: %w: %v", pred.ID, domain.ErrRemote, describeError(pred.Error))
	case StatusCanceled:
		return nil, fmt.Errorf("replicate: prediction %s canceled: %w", pred.ID, domain.ErrRemote)
	}
	return pred, nil
}

// pollURL prefers the prediction's own get link, but only when it points at
// the API host; anything else is rebuilt from the base URL.
func (c *Client) pollURL(pred *prediction) string {
	if raw := strings.TrimSpace(pred.URLs.Get); raw != "" {
		if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" && c.sameHost(parsed) {
			return parsed.String()
		}
		c.logger.Warn().Str("prediction_id", pred.ID).Str("url", raw).Msg("replicate: ignoring foreign poll url")
	}
	return c.baseURL + "/predictions/" + url.PathEscape(pred.ID)
}

func (c *Client) do(req *http.Request, credential string) (*prediction, error) {
	req.Header.Set("Authorization", "Bearer "+credential)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: http request: %w: %v", domain.ErrRemote, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: read response: %w: %v", domain.ErrRemote, err)
	}
	if resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, raw)
	}
	var pred prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return nil, fmt.Errorf("replicate: decode response: %w: %v", domain.ErrRemote, err)
	}
	return &pred, nil
}

// Fetch downloads media bytes. The credential is only sent to the API host.
func (c *Client) Fetch(ctx context.Context, mediaURL, credential string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(mediaURL))
	if err != nil || parsed.Scheme == "" {
		return nil, "", fmt.Errorf("replicate: invalid media url %q: %w", mediaURL, domain.ErrRemote)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("replicate: build download request: %w", err)
	}
	if c.sameHost(parsed) && strings.TrimSpace(credential) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(credential))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("replicate: download media: %w: %v", domain.ErrRemote, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("replicate: download status %d: %w", resp.StatusCode, domain.ErrRemote)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("replicate: read media: %w: %v", domain.ErrRemote, err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}

func (c *Client) sameHost(u *url.URL) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(base.Host, u.Host)
}

// statusError maps an unsuccessful HTTP status to the error taxonomy.
func statusError(status int, raw []byte) error {
	detail := strings.TrimSpace(string(raw))
	var decoded errorResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Detail != "" {
		detail = decoded.Detail
	}
	var kind error
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.ErrAuth
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		kind = domain.ErrInvalidInput
	case http.StatusTooManyRequests:
		kind = domain.ErrRateLimited
	default:
		kind = domain.ErrRemote
	}
	return fmt.Errorf("replicate: status %d: %w: %s", status, kind, detail)
}

func describeError(v any) string {
	switch e := v.(type) {
	case nil:
		return "no error detail"
	case string:
		return e
	default:
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Sprint(e)
		}
		return string(b)
	}
}
