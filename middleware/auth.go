package middleware

import (
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/imalexduke/outline/userctx"
)

type contextKey string

// RequireAuth ensures the user is authenticated
// If not authenticated, redirects to the login flow and stores the
// intended destination
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)
		userID, _ := sess.Get("user_id").(string)

		if userID == "" {
			// Store the intended destination for redirect after login
			sess.Set("redirect_after_login", r.URL.Path)
			http.Redirect(w, r, "/auth/oidc", http.StatusSeeOther)
			return
		}

		// Add user identity to request context for use in handlers and
		// repository audit fields
		ctx := userctx.SetUserID(r.Context(), userID)
		if email, ok := sess.Get("user_email").(string); ok {
			ctx = userctx.SetUserEmail(ctx, email)
		}
		if teamID, ok := sess.Get("team_id").(string); ok {
			ctx = userctx.SetTeamID(ctx, teamID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
