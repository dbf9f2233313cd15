package middleware

import (
	"context"
	"net/http"

	"studio/internal/session"
)

// SessionCookie names the cookie holding the session id.
const SessionCookie = "studio_session"

// Session attaches the caller's session to the request context, opening a
// new one (and setting the cookie) on first contact or after expiry.
func Session(manager *session.Manager, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookie); err == nil {
				id = c.Value
			}
			sess, created, err := manager.Resolve(id)
			if err != nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			annotateSession(r.Context(), sess.ID)
			ctx := WithSession(r.Context(), sess)
			if created {
				ctx = context.WithValue(ctx, newSessKey, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// sessionIsNew reports whether the attached session was opened by this request.
func sessionIsNew(ctx context.Context) bool {
	v, _ := ctx.Value(newSessKey).(bool)
	return v
}

func SessionFromContext(ctx context.Context) *session.Session {
	if v, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return v
	}
	return nil
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
