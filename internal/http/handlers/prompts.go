package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"studio/internal/domain"
	"studio/internal/i18n"
)

type savePromptRequest struct {
	Prompt string `json:"prompt"`
}

func (a *App) SavePrompt(w http.ResponseWriter, r *http.Request) {
	var req savePromptRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.fail(w, r, fmt.Errorf("%w: invalid payload: %v", domain.ErrInvalidInput, err))
			return
		}
	} else {
		req.Prompt = r.FormValue("prompt")
	}
	if err := a.Studio.SavePrompt(req.Prompt); err != nil {
		a.fail(w, r, err)
		return
	}
	a.notice(w, r, http.StatusCreated, i18n.MsgPromptSaved, nil, a.Studio.PromptLogPath())
}

func (a *App) History(w http.ResponseWriter, r *http.Request) {
	sess, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := a.Studio.History(sess)
	a.json(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
