package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"studio/internal/domain"
	"studio/internal/i18n"
	"studio/internal/studio"
)

// TokenHeader carries a per-request Replicate API token.
const TokenHeader = "X-Replicate-Token"

type generateRequest struct {
	domain.GenerationRequest
	APIToken string `json:"api_token"`
}

type generateResponse struct {
	Status    string              `json:"status"`
	Message   string              `json:"message"`
	Output    domain.StoredOutput `json:"output"`
	SourceURL string              `json:"source_url,omitempty"`
	Model     string              `json:"model"`
	Kind      domain.MediaKind    `json:"kind"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	sess, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	req, err := a.decodeGenerate(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	credential := strings.TrimSpace(req.APIToken)
	if credential == "" {
		credential = strings.TrimSpace(r.Header.Get(TokenHeader))
	}

	res, err := a.Studio.Generate(r.Context(), sess, studio.GenerateInput{
		Request:    req.GenerationRequest,
		Credential: credential,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, generateResponse{
		Status:    "ok",
		Message:   i18n.Sprintf(localeOf(r), i18n.MsgSaved, res.Output.Path),
		Output:    res.Output,
		SourceURL: res.SourceURL,
		Model:     res.Model.ID,
		Kind:      res.Model.Kind,
	})
}

func (a *App) decodeGenerate(r *http.Request) (generateRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		return a.decodeGenerateForm(r)
	default:
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return generateRequest{}, fmt.Errorf("%w: invalid payload: %v", domain.ErrInvalidInput, err)
		}
		return req, nil
	}
}

func (a *App) decodeGenerateForm(r *http.Request) (generateRequest, error) {
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return generateRequest{}, fmt.Errorf("%w: invalid form: %v", domain.ErrInvalidInput, err)
	}
	f := formReader{r: r}
	req := generateRequest{
		GenerationRequest: domain.GenerationRequest{
			Model:                r.FormValue("model"),
			Prompt:               r.FormValue("prompt"),
			AspectRatio:          r.FormValue("aspect_ratio"),
			OutputFormat:         r.FormValue("output_format"),
			Quality:              f.integer("output_quality"),
			Seed:                 f.int64Ptr("seed"),
			Guidance:             f.floatPtr("guidance"),
			Steps:                f.intPtr("steps"),
			Interval:             f.floatPtr("interval"),
			SafetyTolerance:      f.intPtr("safety_tolerance"),
			DisableSafetyChecker: f.boolPtr("disable_safety_checker"),
		},
		APIToken: r.FormValue("api_token"),
	}
	if f.err != nil {
		return generateRequest{}, f.err
	}
	src, err := readUpload(r, "image")
	if err != nil {
		return generateRequest{}, err
	}
	req.SourceImage = src
	return req, nil
}

func readUpload(r *http.Request, field string) (*domain.SourceImage, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, field, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, field, err)
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return &domain.SourceImage{Filename: header.Filename, MIME: mimeType, Data: data}, nil
}

// formReader parses optional numeric form fields, keeping the first error.
type formReader struct {
	r   *http.Request
	err error
}

func (f *formReader) value(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

func (f *formReader) fail(name string, err error) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, name, err)
	}
}

func (f *formReader) integer(name string) int {
	v := f.intPtr(name)
	if v == nil {
		return 0
	}
	return *v
}

func (f *formReader) intPtr(name string) *int {
	raw := f.value(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f.fail(name, err)
		return nil
	}
	return &n
}

func (f *formReader) int64Ptr(name string) *int64 {
	raw := f.value(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.fail(name, err)
		return nil
	}
	return &n
}

func (f *formReader) floatPtr(name string) *float64 {
	raw := f.value(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.fail(name, err)
		return nil
	}
	return &n
}

func (f *formReader) boolPtr(name string) *bool {
	raw := f.value(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		f.fail(name, err)
		return nil
	}
	return &b
}
