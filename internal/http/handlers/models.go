package handlers

import (
	"net/http"

	"studio/internal/domain"
	"studio/internal/i18n"
)

type modelView struct {
	domain.ModelSpec
	Title string `json:"title"`
}

type catalogResponse struct {
	Models        []modelView       `json:"models"`
	AspectRatios  []string          `json:"aspect_ratios"`
	OutputFormats []string          `json:"output_formats"`
	Quality       domain.Bounds     `json:"output_quality"`
	Defaults      map[string]string `json:"defaults"`
}

// Models lists the selectable models with their slider bounds and defaults.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	locale := localeOf(r)
	specs := domain.Models()
	views := make([]modelView, 0, len(specs))
	for _, spec := range specs {
		views = append(views, modelView{ModelSpec: spec, Title: i18n.Title(locale, spec.Description)})
	}
	a.json(w, http.StatusOK, catalogResponse{
		Models:        views,
		AspectRatios:  domain.AspectRatios,
		OutputFormats: domain.OutputFormats,
		Quality:       domain.QualityBounds,
		Defaults: map[string]string{
			"model":         domain.DefaultModel,
			"aspect_ratio":  domain.DefaultAspectRatio,
			"output_format": domain.DefaultOutputFormat,
		},
	})
}
