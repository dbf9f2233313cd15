package replicate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/domain"
)

// fakeReplicate records create calls and answers polls from a script.
type fakeReplicate struct {
	t *testing.T

	mu       sync.Mutex
	lastBody map[string]any
	lastPath string
	lastAuth string
	prefer   string
	pollPath string
	pollAuth string

	createStatus int
	create       map[string]any
	polls        []map[string]any
	pollCount    atomic.Int32
}

func newFakeReplicate(t *testing.T) (*fakeReplicate, *httptest.Server) {
	f := &fakeReplicate{t: t, createStatus: http.StatusCreated}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeReplicate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodPost:
		raw, err := io.ReadAll(r.Body)
		assert.NoError(f.t, err)
		var body map[string]any
		assert.NoError(f.t, json.Unmarshal(raw, &body))
		f.lastBody = body
		f.lastPath = r.URL.Path
		f.lastAuth = r.Header.Get("Authorization")
		f.prefer = r.Header.Get("Prefer")
		w.WriteHeader(f.createStatus)
		_ = json.NewEncoder(w).Encode(f.create)
	case http.MethodGet:
		f.pollPath = r.URL.Path
		f.pollAuth = r.Header.Get("Authorization")
		n := int(f.pollCount.Add(1)) - 1
		if n >= len(f.polls) {
			n = len(f.polls) - 1
		}
		_ = json.NewEncoder(w).Encode(f.polls[n])
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Options{
		BaseURL:      srv.URL + "/v1",
		HTTPClient:   srv.Client(),
		PollInterval: time.Millisecond,
		MaxPolls:     5,
	})
}

func schnellRequest() domain.GenerationRequest {
	seed := int64(42)
	req := domain.GenerationRequest{Model: "schnell", Prompt: "A red fox in snow!!", Seed: &seed}
	req.Normalize()
	return req
}

func TestGenerateEndToEndPayload(t *testing.T) {
	fake, srv := newFakeReplicate(t)
	fake.create = map[string]any{
		"id":     "p1",
		"status": "succeeded",
		"output": []any{"https://x/y.png"},
	}
	client := newTestClient(srv)

	ref, err := client.Generate(context.Background(), schnellRequest(), "r8_token")
	require.NoError(t, err)

	assert.Equal(t, domain.URLReference("https://x/y.png"), ref)
	assert.Equal(t, "/v1/models/black-forest-labs/flux-schnell/predictions", fake.lastPath)
	assert.Equal(t, "Bearer r8_token", fake.lastAuth)
	assert.Equal(t, "wait", fake.prefer)
	assert.Equal(t, map[string]any{
		"input": map[string]any{
			"prompt":         "A red fox in snow!!",
			"aspect_ratio":   "1:1",
			"output_format":  "png",
			"output_quality": float64(100),
			"seed":           float64(42),
		},
	}, fake.lastBody)
}

func TestGenerateRequiresCredential(t *testing.T) {
	fake, srv := newFakeReplicate(t)
	client := newTestClient(srv)

	_, err := client.Generate(context.Background(), schnellRequest(), "   ")
	require.ErrorIs(t, err, domain.ErrAuth)
	assert.Nil(t, fake.lastBody, "no remote call may happen without a credential")
}

func TestGeneratePollsUntilTerminal(t *testing.T) {
	fake, srv := newFakeReplicate(t)
	fake.create = map[string]any{
		"id":     "p2",
		"status": "starting",
		"urls":   map[string]any{"get": srv.URL + "/v1/predictions/p2"},
	}
	fake.polls = []map[string]any{
		{"id": "p2", "status": "processing"},
		{"id": "p2", "status": "succeeded", "output": "https://x/video.mp4"},
	}
	client := newTestClient(srv)

	ref, err := client.Generate(context.Background(), schnellRequest(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "https://x/video.mp4", ref.URL)
	assert.Equal(t, int32(2), fake.pollCount.Load())
}

func TestGeneratePollIgnoresForeignHost(t *testing.T) {
	fake, srv := newFakeReplicate(t)
	fake.create = map[string]any{
		"id":     "p6",
		"status": "starting",
		"urls":   map[string]any{"get": "https://elsewhere.example/v1/predictions/p6"},
	}
	fake.polls = []map[string]any{
		{"id": "p6", "status": "succeeded", "output": "https://x/y.png"},
	}
	client := newTestClient(srv)

	ref, err := client.Generate(context.Background(), schnellRequest(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.png", ref.URL)
	assert.Equal(t, int32(1), fake.pollCount.Load())
	assert.Equal(t, "/v1/predictions/p6", fake.pollPath)
	assert.Equal(t, "Bearer tok", fake.pollAuth)
}

func TestGeneratePollExhaustionIsTimeout(t *testing.T) {
	fake, srv := newFakeReplicate(t)
	fake.create = map[string]any{"id": "p3", "status": "starting"}
	fake.polls = []map[string]any{{"id": "p3", "status": "processing"}}
	client := newTestClient(srv)

	_, err := client.Generate(context.Background(), schnellRequest(), "tok")
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, int32(5), fake.pollCount.Load())
}

func TestGenerateFailedPrediction(t *testing.T) {
	fake, srv := newFakeReplicate(t)
	fake.create = map[string]any{"id": "p4", "status": "failed", "error": "NSFW content detected"}
	client := newTestClient(srv)

	_, err := client.Generate(context.Background(), schnellRequest(), "tok")
	require.ErrorIs(t, err, domain.ErrRemote)
	assert.Contains(t, err.Error(), "NSFW content detected")
}

func TestGenerateUnexpectedOutput(t *testing.T) {
	fake, srv := newFakeReplicate(t)
	fake.create = map[string]any{"id": "p5", "status": "succeeded", "output": map[string]any{"text": "hello"}}
	client := newTestClient(srv)

	_, err := client.Generate(context.Background(), schnellRequest(), "tok")
	var unexpected *domain.UnexpectedOutputError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, map[string]any{"text": "hello"}, unexpected.Raw)
}

func TestGenerateMapsHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrAuth},
		{http.StatusForbidden, domain.ErrAuth},
		{http.StatusUnprocessableEntity, domain.ErrInvalidInput},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusInternalServerError, domain.ErrRemote},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			fake, srv := newFakeReplicate(t)
			fake.createStatus = tc.status
			fake.create = map[string]any{"title": "error", "detail": "input.aspect_ratio: must be one of", "status": tc.status}
			client := newTestClient(srv)

			_, err := client.Generate(context.Background(), schnellRequest(), "tok")
			require.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), "input.aspect_ratio")
		})
	}
}

func TestGenerateRateLimitIsRemote(t *testing.T) {
	fake, srv := newFakeReplicate(t)
	fake.createStatus = http.StatusTooManyRequests
	fake.create = map[string]any{"detail": "slow down"}
	client := newTestClient(srv)

	_, err := client.Generate(context.Background(), schnellRequest(), "tok")
	assert.Equal(t, domain.KindRemote, domain.Kind(err))
}

func TestFetch(t *testing.T) {
	var gotAuth atomic.Value
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer media.Close()

	client := NewClient(Options{BaseURL: "https://api.replicate.com/v1", HTTPClient: media.Client()})
	data, mime, err := client.Fetch(context.Background(), media.URL+"/y.png", "tok")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, "", gotAuth.Load(), "credential must not leak to delivery hosts")

	_, _, err = client.Fetch(context.Background(), media.URL+"/missing.png", "tok")
	require.ErrorIs(t, err, domain.ErrRemote)

	apiClient := NewClient(Options{BaseURL: media.URL + "/v1", HTTPClient: media.Client()})
	_, _, err = apiClient.Fetch(context.Background(), media.URL+"/files/abc", "tok")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth.Load())
}
