package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SourceImage is an uploaded image used to condition edit and video models.
type SourceImage struct {
	Filename string
	MIME     string
	Data     []byte
}

// GenerationRequest carries the form inputs for one submission.
type GenerationRequest struct {
	Model                string       `json:"model"`
	Prompt               string       `json:"prompt" validate:"required"`
	AspectRatio          string       `json:"aspect_ratio" validate:"omitempty,oneof=1:1 16:9 21:9 2:3 3:2 4:5 5:4 9:16 9:21"`
	OutputFormat         string       `json:"output_format" validate:"omitempty,oneof=png jpg webp"`
	Quality              int          `json:"output_quality" validate:"min=1,max=100"`
	Seed                 *int64       `json:"seed,omitempty" validate:"omitempty,min=0,max=4294967295"`
	Guidance             *float64     `json:"guidance,omitempty" validate:"omitempty,min=0,max=10"`
	Steps                *int         `json:"steps,omitempty" validate:"omitempty,min=1,max=100"`
	Interval             *float64     `json:"interval,omitempty" validate:"omitempty,min=1,max=4"`
	SafetyTolerance      *int         `json:"safety_tolerance,omitempty" validate:"omitempty,min=1,max=5"`
	DisableSafetyChecker *bool        `json:"disable_safety_checker,omitempty"`
	SourceImage          *SourceImage `json:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims the prompt and fills defaults for unset selectors.
func (r *GenerationRequest) Normalize() {
	r.Model = strings.TrimSpace(r.Model)
	if r.Model == "" {
		r.Model = DefaultModel
	}
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.AspectRatio = strings.TrimSpace(r.AspectRatio)
	if r.AspectRatio == "" {
		r.AspectRatio = DefaultAspectRatio
	}
	r.OutputFormat = strings.ToLower(strings.TrimSpace(r.OutputFormat))
	if r.OutputFormat == "" {
		r.OutputFormat = DefaultOutputFormat
	}
	if r.Quality == 0 {
		r.Quality = int(QualityBounds.Default)
	}
}

// Validate checks static bounds and the bounds that depend on the model tier.
func (r *GenerationRequest) Validate(spec ModelSpec) error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	if r.Guidance != nil && spec.Params.Guidance != nil && !spec.Params.Guidance.Contains(*r.Guidance) {
		b := spec.Params.Guidance
		return fmt.Errorf("%w: guidance must be between %g and %g for %s", ErrInvalidInput, b.Min, b.Max, spec.ID)
	}
	if spec.NeedsSource() && (r.SourceImage == nil || len(r.SourceImage.Data) == 0) {
		return ErrSourceImageRequired
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
