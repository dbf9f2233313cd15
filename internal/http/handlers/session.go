package handlers

import (
	"net/http"

	"studio/internal/i18n"
	"studio/internal/middleware"
)

// EndSession discards the caller's history and last-saved pointer. Files
// already written stay on disk.
func (a *App) EndSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Sessions.End(sess.ID)
	middleware.ClearSessionCookie(w)
	a.notice(w, r, http.StatusOK, i18n.MsgSessionEnded, nil)
}
