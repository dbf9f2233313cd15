package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestGenerationRequestNormalizeDefaults(t *testing.T) {
	req := GenerationRequest{Prompt: "  A red fox in snow!!  "}
	req.Normalize()

	assert.Equal(t, "schnell", req.Model)
	assert.Equal(t, "A red fox in snow!!", req.Prompt)
	assert.Equal(t, "1:1", req.AspectRatio)
	assert.Equal(t, "png", req.OutputFormat)
	assert.Equal(t, 100, req.Quality)
}

func TestGenerationRequestValidate(t *testing.T) {
	schnell := Catalog["schnell"]
	dev := Catalog["dev"]
	pro := Catalog["pro"]
	edit := Catalog["qwen-image-edit"]

	tests := []struct {
		name    string
		spec    ModelSpec
		req     GenerationRequest
		wantErr error
	}{
		{name: "valid minimal", spec: schnell, req: GenerationRequest{Prompt: "fox"}},
		{name: "empty prompt", spec: schnell, req: GenerationRequest{Prompt: "   "}, wantErr: ErrEmptyPrompt},
		{name: "bad aspect", spec: schnell, req: GenerationRequest{Prompt: "fox", AspectRatio: "7:3"}, wantErr: ErrInvalidInput},
		{name: "quality too high", spec: schnell, req: GenerationRequest{Prompt: "fox", Quality: 101}, wantErr: ErrInvalidInput},
		{name: "seed max ok", spec: schnell, req: GenerationRequest{Prompt: "fox", Seed: ptr(int64(4294967295))}},
		{name: "seed overflow", spec: schnell, req: GenerationRequest{Prompt: "fox", Seed: ptr(int64(4294967296))}, wantErr: ErrInvalidInput},
		{name: "negative seed", spec: schnell, req: GenerationRequest{Prompt: "fox", Seed: ptr(int64(-1))}, wantErr: ErrInvalidInput},
		{name: "dev guidance zero", spec: dev, req: GenerationRequest{Prompt: "fox", Guidance: ptr(0.0)}},
		{name: "pro guidance below tier", spec: pro, req: GenerationRequest{Prompt: "fox", Guidance: ptr(1.5)}, wantErr: ErrInvalidInput},
		{name: "steps out of range", spec: pro, req: GenerationRequest{Prompt: "fox", Steps: ptr(0)}, wantErr: ErrInvalidInput},
		{name: "edit needs source", spec: edit, req: GenerationRequest{Prompt: "make it blue"}, wantErr: ErrSourceImageRequired},
		{
			name: "edit with source",
			spec: edit,
			req:  GenerationRequest{Prompt: "make it blue", SourceImage: &SourceImage{MIME: "image/png", Data: []byte{1}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			req.Normalize()
			err := req.Validate(tc.spec)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, KindInvalidInput, Kind(err))
		})
	}
}

func TestValidationMessageUsesJSONNames(t *testing.T) {
	req := GenerationRequest{Prompt: "fox", AspectRatio: "7:3"}
	req.Normalize()
	err := req.Validate(Catalog["schnell"])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aspect_ratio failed oneof")
}

func TestLookupModel(t *testing.T) {
	spec, err := LookupModel("")
	require.NoError(t, err)
	assert.Equal(t, "black-forest-labs/flux-schnell", spec.Ref)
	assert.Equal(t, "black-forest-labs", spec.Owner())
	assert.Equal(t, "flux-schnell", spec.Name())

	_, err = LookupModel("flux-ultra")
	require.ErrorIs(t, err, ErrUnknownModel)
}

func TestModelExtension(t *testing.T) {
	assert.Equal(t, ".png", Catalog["schnell"].Extension("png"))
	assert.Equal(t, ".jpg", Catalog["dev"].Extension("jpg"))
	assert.Equal(t, ".webp", Catalog["qwen-image-edit"].Extension("png"))
	assert.Equal(t, ".mp4", Catalog["wan-2.2-i2v-fast"].Extension(""))
}

func TestModelsSorted(t *testing.T) {
	models := Models()
	require.Len(t, models, len(Catalog))
	for i := 1; i < len(models); i++ {
		assert.Less(t, models[i-1].ID, models[i].ID)
	}
}
