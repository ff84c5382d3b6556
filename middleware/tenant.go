package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/imalexduke/outline/models"
	"github.com/imalexduke/outline/repositories"
	"github.com/imalexduke/outline/services"
)

const teamContextKey contextKey = "team"

// Tenant resolves the team targeted by the request from the host
// subdomain. Requests on the apex host resolve no team, which is the
// first-time team creation path; a resolution miss is never an error here.
func Tenant(teams services.TeamService, baseHost string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subdomain := subdomainFromHost(r.Host, baseHost)
			if subdomain == "" {
				next.ServeHTTP(w, r)
				return
			}

			team, err := teams.GetTeamBySubdomain(r.Context(), subdomain)
			if err != nil {
				if !errors.Is(err, repositories.ErrNotFound) {
					logger.Error("failed to resolve team from host",
						zap.String("host", r.Host), zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), teamContextKey, team)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TeamFromContext retrieves the request's team, or nil when the request
// targets no existing team.
func TeamFromContext(ctx context.Context) *models.Team {
	team, _ := ctx.Value(teamContextKey).(*models.Team)
	return team
}

// subdomainFromHost extracts the tenant subdomain from the request host
func subdomainFromHost(host, baseHost string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if b, _, err := net.SplitHostPort(baseHost); err == nil {
		baseHost = b
	}

	if host == baseHost || baseHost == "" {
		return ""
	}

	suffix := "." + baseHost
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	subdomain := strings.TrimSuffix(host, suffix)
	// Nested subdomains are not tenant hosts
	if subdomain == "" || strings.Contains(subdomain, ".") {
		return ""
	}
	return subdomain
}
