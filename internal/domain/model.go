package domain

import (
	"sort"
	"strings"
)

// Tier groups models that accept the same parameter set.
type Tier string

const (
	TierFast  Tier = "fast"
	TierDev   Tier = "dev"
	TierPro   Tier = "pro"
	TierEdit  Tier = "edit"
	TierVideo Tier = "video"
)

// MediaKind is the kind of media a model produces.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Bounds describes a numeric slider on the form.
type Bounds struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// ParamSet lists the optional attributes a model accepts. A nil bound means
// the attribute is omitted from the outgoing payload.
type ParamSet struct {
	AspectRatio          bool    `json:"aspect_ratio"`
	OutputFormat         bool    `json:"output_format"`
	Quality              bool    `json:"output_quality"`
	Guidance             *Bounds `json:"guidance,omitempty"`
	Steps                *Bounds `json:"steps,omitempty"`
	Interval             *Bounds `json:"interval,omitempty"`
	SafetyTolerance      *Bounds `json:"safety_tolerance,omitempty"`
	DisableSafetyChecker bool    `json:"disable_safety_checker"`
	// SafetyCheckerOff is sent when the caller leaves DisableSafetyChecker unset.
	SafetyCheckerOff *bool `json:"safety_checker_default,omitempty"`
	SourceImage      bool  `json:"image"`
}

// ModelSpec binds a form-level model identifier to a remote model reference.
type ModelSpec struct {
	ID          string    `json:"id"`
	Ref         string    `json:"ref"`
	Tier        Tier      `json:"tier"`
	Kind        MediaKind `json:"kind"`
	Description string    `json:"description"`
	FixedExt    string    `json:"extension,omitempty"`
	Params      ParamSet  `json:"params"`
}

// NeedsSource reports whether the model is image-conditioned.
func (m ModelSpec) NeedsSource() bool {
	return m.Params.SourceImage
}

// Extension returns the file extension for persisted output.
func (m ModelSpec) Extension(format string) string {
	if m.FixedExt != "" {
		return m.FixedExt
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpg", "jpeg":
		return ".jpg"
	case "webp":
		return ".webp"
	default:
		return ".png"
	}
}

// Owner and Name split Ref ("owner/name").
func (m ModelSpec) Owner() string {
	owner, _, _ := strings.Cut(m.Ref, "/")
	return owner
}

func (m ModelSpec) Name() string {
	_, name, _ := strings.Cut(m.Ref, "/")
	return name
}

var (
	AspectRatios  = []string{"1:1", "16:9", "21:9", "2:3", "3:2", "4:5", "5:4", "9:16", "9:21"}
	OutputFormats = []string{"png", "jpg", "webp"}
	QualityBounds = Bounds{Min: 1, Max: 100, Default: 100}
)

const (
	DefaultAspectRatio  = "1:1"
	DefaultOutputFormat = "png"
	DefaultModel        = "schnell"
)

var (
	devGuidance     = Bounds{Min: 0, Max: 10, Default: 3.5}
	proGuidance     = Bounds{Min: 2, Max: 5, Default: 3}
	proSteps        = Bounds{Min: 1, Max: 100, Default: 25}
	proInterval     = Bounds{Min: 1, Max: 4, Default: 1}
	proSafetyTol    = Bounds{Min: 1, Max: 5, Default: 3}
	safetyOff       = true
	fluxImageParams = ParamSet{AspectRatio: true, OutputFormat: true, Quality: true}
)

func fluxParams(p ParamSet) ParamSet {
	out := fluxImageParams
	out.Guidance = p.Guidance
	out.Steps = p.Steps
	out.Interval = p.Interval
	out.SafetyTolerance = p.SafetyTolerance
	out.DisableSafetyChecker = p.DisableSafetyChecker
	return out
}

// Catalog holds every model the form can select.
var Catalog = map[string]ModelSpec{
	"schnell": {
		ID: "schnell", Ref: "black-forest-labs/flux-schnell", Tier: TierFast, Kind: MediaImage,
		Description: "fast and cheap",
		Params:      fluxParams(ParamSet{DisableSafetyChecker: true}),
	},
	"dev": {
		ID: "dev", Ref: "black-forest-labs/flux-dev", Tier: TierDev, Kind: MediaImage,
		Description: "quick and inexpensive",
		Params:      fluxParams(ParamSet{Guidance: &devGuidance, DisableSafetyChecker: true}),
	},
	"pro": {
		ID: "pro", Ref: "black-forest-labs/flux-pro", Tier: TierPro, Kind: MediaImage,
		Description: "moderate render time, most expensive",
		Params: fluxParams(ParamSet{
			Guidance: &proGuidance, Steps: &proSteps, Interval: &proInterval, SafetyTolerance: &proSafetyTol,
		}),
	},
	"1.1-pro": {
		ID: "1.1-pro", Ref: "black-forest-labs/flux-1.1-pro", Tier: TierPro, Kind: MediaImage,
		Description: "moderate render time, most expensive",
		Params: fluxParams(ParamSet{
			Guidance: &proGuidance, Steps: &proSteps, Interval: &proInterval, SafetyTolerance: &proSafetyTol,
		}),
	},
	"qwen-image-edit": {
		ID: "qwen-image-edit", Ref: "qwen/qwen-image-edit", Tier: TierEdit, Kind: MediaImage,
		Description: "edit an uploaded image from an instruction",
		FixedExt:    ".webp",
		Params: ParamSet{
			Quality: true, DisableSafetyChecker: true, SafetyCheckerOff: &safetyOff, SourceImage: true,
		},
	},
	"wan-2.2-i2v-fast": {
		ID: "wan-2.2-i2v-fast", Ref: "wan-video/wan-2.2-i2v-fast", Tier: TierVideo, Kind: MediaVideo,
		Description: "animate an uploaded image into a short video",
		FixedExt:    ".mp4",
		Params: ParamSet{
			DisableSafetyChecker: true, SafetyCheckerOff: &safetyOff, SourceImage: true,
		},
	},
}

// LookupModel resolves a form-level identifier.
func LookupModel(id string) (ModelSpec, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = DefaultModel
	}
	spec, ok := Catalog[id]
	if !ok {
		return ModelSpec{}, ErrUnknownModel
	}
	return spec, nil
}

// Models returns the catalog sorted by identifier.
func Models() []ModelSpec {
	out := make([]ModelSpec, 0, len(Catalog))
	for _, spec := range Catalog {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
