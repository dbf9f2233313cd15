package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"studio/internal/domain"
	"studio/internal/i18n"
	"studio/internal/middleware"
	"studio/internal/session"
)

type statusResponse struct {
	Status    string `json:"status"`
	Kind      string `json:"kind,omitempty"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// fail is the single error boundary: every handler failure is classified,
// logged and rendered as a localized message. Warnings are answered with
// 200 and status "warning".
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	locale := localeOf(r)
	kind := domain.Kind(err)
	if errors.Is(err, context.DeadlineExceeded) {
		kind = domain.KindTimeout
	}
	code, key := classify(kind)
	if errors.Is(err, domain.ErrRateLimited) {
		code, key = http.StatusTooManyRequests, i18n.MsgRateLimited
	}

	resp := statusResponse{
		Status:    "error",
		Kind:      kind,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}
	switch key {
	case i18n.MsgInvalidInput:
		resp.Message = i18n.Sprintf(locale, key, strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "))
	case i18n.MsgRemote:
		resp.Message = i18n.Sprintf(locale, key, err.Error())
	default:
		resp.Message = i18n.Sprintf(locale, key)
		if code >= http.StatusInternalServerError || kind == domain.KindUnexpectedOutput {
			resp.Detail = err.Error()
		}
	}
	if kind == domain.KindNothingToDelete {
		resp.Status = "warning"
	}

	evt := a.Logger.Warn()
	if code >= http.StatusInternalServerError {
		evt = a.Logger.Error()
	}
	evt.Err(err).Str("kind", kind).Int("status", code).Str("request_id", resp.RequestID).Msg("http: request failed")
	a.json(w, code, resp)
}

func classify(kind string) (int, string) {
	switch kind {
	case domain.KindAuth:
		return http.StatusUnauthorized, i18n.MsgAuth
	case domain.KindInvalidInput:
		return http.StatusBadRequest, i18n.MsgInvalidInput
	case domain.KindRemote:
		return http.StatusBadGateway, i18n.MsgRemote
	case domain.KindTimeout:
		return http.StatusGatewayTimeout, i18n.MsgTimeout
	case domain.KindUnexpectedOutput:
		return http.StatusBadGateway, i18n.MsgUnexpectedOutput
	case domain.KindIO:
		return http.StatusInternalServerError, i18n.MsgIO
	case domain.KindNothingToDelete:
		return http.StatusOK, i18n.MsgNothingToDelete
	case domain.KindNotFound:
		return http.StatusNotFound, i18n.MsgNotFound
	default:
		return http.StatusInternalServerError, i18n.MsgInternal
	}
}

// notice renders a localized success message.
func (a *App) notice(w http.ResponseWriter, r *http.Request, code int, key string, extra map[string]any, args ...any) {
	body := map[string]any{
		"status":  "ok",
		"message": i18n.Sprintf(localeOf(r), key, args...),
	}
	for k, v := range extra {
		body[k] = v
	}
	a.json(w, code, body)
}

var errNoSession = errors.New("http: no session attached to request")

func (a *App) session(r *http.Request) (*session.Session, error) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		return nil, errNoSession
	}
	return sess, nil
}

func localeOf(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context())
}
