package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/session"
	"studio/internal/storage"
)

// Generator runs a remote generation and returns the first output.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest, credential string) (domain.MediaReference, error)
	Fetch(ctx context.Context, url, credential string) ([]byte, string, error)
}

// ReadinessChecker reports whether a remote URL can be fetched yet.
type ReadinessChecker interface {
	WaitUntilReady(ctx context.Context, url string, maxAttempts int, delay time.Duration) bool
}

// Options wires the collaborators of a Service.
type Options struct {
	Generator Generator
	Readiness ReadinessChecker
	Prompts   *storage.PromptLog
	Logger    *infra.Logger
	// DefaultCredential is used when a request does not carry its own.
	DefaultCredential string
	ReadyAttempts     int
	ReadyDelay        time.Duration
}

// Service drives one submission from form values to a saved file.
type Service struct {
	generator         Generator
	readiness         ReadinessChecker
	prompts           *storage.PromptLog
	logger            *infra.Logger
	defaultCredential string
	readyAttempts     int
	readyDelay        time.Duration
}

func NewService(opts Options) (*Service, error) {
	if opts.Generator == nil {
		return nil, errors.New("studio: generator is required")
	}
	if opts.Readiness == nil {
		return nil, errors.New("studio: readiness checker is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	attempts := opts.ReadyAttempts
	if attempts <= 0 {
		attempts = 10
	}
	delay := opts.ReadyDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Service{
		generator:         opts.Generator,
		readiness:         opts.Readiness,
		prompts:           opts.Prompts,
		logger:            logger,
		defaultCredential: strings.TrimSpace(opts.DefaultCredential),
		readyAttempts:     attempts,
		readyDelay:        delay,
	}, nil
}

// GenerateInput is one form submission.
type GenerateInput struct {
	Request    domain.GenerationRequest
	Credential string
}

// Result is what the form displays after a successful submission.
type Result struct {
	Output    domain.StoredOutput `json:"output"`
	SourceURL string              `json:"source_url,omitempty"`
	Model     domain.ModelSpec    `json:"model"`
}

// Generate validates the submission, records it in the session history,
// runs the model, waits for the result to become retrievable and saves it.
// Submissions on one session are serialized.
func (s *Service) Generate(ctx context.Context, sess *session.Session, in GenerateInput) (*Result, error) {
	if sess == nil {
		return nil, errors.New("studio: session is required")
	}
	credential := strings.TrimSpace(in.Credential)
	if credential == "" {
		credential = s.defaultCredential
	}
	if credential == "" {
		return nil, fmt.Errorf("studio: no api token supplied: %w", domain.ErrAuth)
	}

	req := in.Request
	req.Normalize()
	spec, err := domain.LookupModel(req.Model)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(spec); err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	sess.History.Record(req.Prompt)
	log := s.logger.With().Str("session_id", sess.ID).Str("model", spec.ID).Logger()
	log.Info().Msg("studio: generation submitted")

	ref, err := s.generator.Generate(ctx, req, credential)
	if err != nil {
		log.Warn().Err(err).Msg("studio: generation failed")
		return nil, err
	}

	data, sourceURL, err := s.materialize(ctx, &log, ref, credential)
	if err != nil {
		return nil, err
	}

	out, err := sess.Outputs.Persist(ctx, data, req.Prompt, spec.Extension(req.OutputFormat))
	if err != nil {
		log.Error().Err(err).Msg("studio: persist failed")
		return nil, err
	}
	log.Info().Str("path", out.Path).Int64("bytes", out.Bytes).Msg("studio: output saved")
	return &Result{Output: out, SourceURL: sourceURL, Model: spec}, nil
}

// materialize turns a MediaReference into bytes. URLs are polled until the
// object exists and then downloaded; inline bytes are used as-is.
func (s *Service) materialize(ctx context.Context, log *infra.Logger, ref domain.MediaReference, credential string) ([]byte, string, error) {
	switch ref.Kind {
	case domain.ReferenceBytes:
		return ref.Data, "", nil
	case domain.ReferenceURL:
		if !s.readiness.WaitUntilReady(ctx, ref.URL, s.readyAttempts, s.readyDelay) {
			if err := ctx.Err(); err != nil {
				return nil, "", err
			}
			log.Warn().Str("url", ref.URL).Int("attempts", s.readyAttempts).Msg("studio: media not ready")
			return nil, "", fmt.Errorf("studio: %s not ready after %d checks: %w", ref.URL, s.readyAttempts, domain.ErrTimeout)
		}
		data, _, err := s.generator.Fetch(ctx, ref.URL, credential)
		if err != nil {
			log.Warn().Err(err).Str("url", ref.URL).Msg("studio: download failed")
			return nil, "", err
		}
		return data, ref.URL, nil
	default:
		return nil, "", &domain.UnexpectedOutputError{Raw: ref}
	}
}

// DeleteLast removes the session's last saved output. With nothing saved it
// returns domain.ErrNothingToDelete.
func (s *Service) DeleteLast(sess *session.Session) (domain.StoredOutput, error) {
	if sess == nil {
		return domain.StoredOutput{}, errors.New("studio: session is required")
	}
	sess.Lock()
	defer sess.Unlock()
	removed, err := sess.Outputs.DeleteLast()
	if err != nil {
		return domain.StoredOutput{}, err
	}
	s.logger.Info().Str("session_id", sess.ID).Str("path", removed.Path).Msg("studio: deleted last output")
	return removed, nil
}

// LastOutput returns the session's last saved output and its bytes.
func (s *Service) LastOutput(sess *session.Session) (domain.StoredOutput, []byte, error) {
	if sess == nil {
		return domain.StoredOutput{}, nil, errors.New("studio: session is required")
	}
	sess.Lock()
	defer sess.Unlock()
	out, ok := sess.Outputs.LastSaved()
	if !ok {
		return domain.StoredOutput{}, nil, domain.ErrNoOutput
	}
	data, err := storage.ReadOutput(out)
	if err != nil {
		return domain.StoredOutput{}, nil, err
	}
	return out, data, nil
}

// Bundle zips the last output together with its prompt.
func (s *Service) Bundle(sess *session.Session) (domain.StoredOutput, []byte, error) {
	out, data, err := s.LastOutput(sess)
	if err != nil {
		return domain.StoredOutput{}, nil, err
	}
	archive, err := storage.Archive([]storage.ArchiveEntry{
		{Filename: out.Filename, Data: data},
		{Filename: "prompt.txt", Data: []byte(out.Prompt + "\n")},
	})
	if err != nil {
		return domain.StoredOutput{}, nil, fmt.Errorf("studio: bundle: %w: %v", domain.ErrIO, err)
	}
	return out, archive, nil
}

// SavePrompt appends prompt to the saved prompts log.
func (s *Service) SavePrompt(prompt string) error {
	if s.prompts == nil {
		return errors.New("studio: prompt log not configured")
	}
	prompt = strings.TrimSpace(prompt)
	if err := s.prompts.Append(prompt); err != nil {
		return err
	}
	s.logger.Info().Str("file", s.prompts.Path()).Msg("studio: prompt saved")
	return nil
}

// History returns the session's prompts, most recent first.
func (s *Service) History(sess *session.Session) []domain.PromptHistoryEntry {
	if sess == nil {
		return nil
	}
	return sess.History.List()
}

// PromptLogPath reports where saved prompts are written.
func (s *Service) PromptLogPath() string {
	if s.prompts == nil {
		return ""
	}
	return s.prompts.Path()
}
