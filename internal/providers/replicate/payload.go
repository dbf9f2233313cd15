package replicate

import (
	"net/http"

	"studio/internal/domain"
)

// BuildInput renders the model input for req. Only attributes the model
// accepts are included; optional tier parameters fall back to the model's
// defaults so the remote side always sees an explicit value.
func BuildInput(spec domain.ModelSpec, req domain.GenerationRequest) map[string]any {
	p := spec.Params
	in := map[string]any{"prompt": req.Prompt}

	if p.AspectRatio {
		in["aspect_ratio"] = req.AspectRatio
	}
	if p.OutputFormat {
		in["output_format"] = req.OutputFormat
	}
	if p.Quality {
		in["output_quality"] = req.Quality
	}
	if req.Seed != nil {
		in["seed"] = *req.Seed
	}
	if p.Guidance != nil {
		in["guidance"] = floatOr(req.Guidance, p.Guidance.Default)
	}
	if p.Steps != nil {
		in["steps"] = intOr(req.Steps, int(p.Steps.Default))
	}
	if p.Interval != nil {
		in["interval"] = floatOr(req.Interval, p.Interval.Default)
	}
	if p.SafetyTolerance != nil {
		in["safety_tolerance"] = intOr(req.SafetyTolerance, int(p.SafetyTolerance.Default))
	}
	if p.DisableSafetyChecker {
		switch {
		case req.DisableSafetyChecker != nil:
			in["disable_safety_checker"] = *req.DisableSafetyChecker
		case p.SafetyCheckerOff != nil:
			in["disable_safety_checker"] = *p.SafetyCheckerOff
		}
	}
	if p.SourceImage && req.SourceImage != nil && len(req.SourceImage.Data) > 0 {
		mime := req.SourceImage.MIME
		if mime == "" {
			mime = http.DetectContentType(req.SourceImage.Data)
		}
		in["image"] = domain.EncodeDataURI(mime, req.SourceImage.Data)
	}
	return in
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
