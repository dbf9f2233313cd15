package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"studio/internal/i18n"
)

// LastOutput serves the session's most recent file. With ?bundle=zip the
// file is zipped together with its prompt.
func (a *App) LastOutput(w http.ResponseWriter, r *http.Request) {
	sess, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.EqualFold(r.URL.Query().Get("bundle"), "zip") {
		out, archive, err := a.Studio.Bundle(sess)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		stem := strings.TrimSuffix(out.Filename, filepath.Ext(out.Filename))
		writeAttachment(w, "application/zip", stem+".zip", archive)
		return
	}
	out, data, err := a.Studio.LastOutput(sess)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", out.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", out.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteLast removes the session's most recent file. Having nothing to
// delete is reported as a warning, not an error.
func (a *App) DeleteLast(w http.ResponseWriter, r *http.Request) {
	sess, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	removed, err := a.Studio.DeleteLast(sess)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.notice(w, r, http.StatusOK, i18n.MsgDeleted, map[string]any{"output": removed}, removed.Path)
}
