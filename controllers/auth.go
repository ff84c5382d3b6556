package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"gitea.com/go-chi/session"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/imalexduke/outline/authenticator"
	"github.com/imalexduke/outline/middleware"
	"github.com/imalexduke/outline/services"
)

// Session keys used by the login flow
const (
	sessionState     = "state"
	sessionVerifier  = "pkce_verifier"
	sessionClient    = "oauth_client"
	sessionLoginTeam = "login_team_id"
	sessionUserID    = "user_id"
	sessionEmail     = "user_email"
	sessionTeamID    = "team_id"
)

type AuthController struct {
	accounts services.AccountService
	teams    services.TeamService
	logger   *zap.Logger
}

func NewAuthController(accounts services.AccountService, teams services.TeamService, logger *zap.Logger) *AuthController {
	return &AuthController{accounts: accounts, teams: teams, logger: logger}
}

// Login initiates the authentication process
func (ac *AuthController) Login(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Generate random state
		state, err := generateRandomState()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		verifier := oauth2.GenerateVerifier()

		// The OAuth client that started the login travels through the
		// session to the callback.
		client := r.URL.Query().Get("client")
		if client == "" {
			client = services.DefaultClient
		}

		// Save state and verifier in the session to validate in callback
		sess := session.GetSession(r)
		sess.Set(sessionState, state)
		sess.Set(sessionVerifier, verifier)
		sess.Set(sessionClient, client)

		// The provider calls back on the apex host, so a login started on
		// a tenant host carries its team through the session too.
		if team := middleware.TeamFromContext(r.Context()); team != nil {
			sess.Set(sessionLoginTeam, team.ID)
		} else {
			sess.Delete(sessionLoginTeam)
		}

		// Redirect to the identity provider's login page
		http.Redirect(w, r, auth.GetAuthURL(state, verifier), http.StatusTemporaryRedirect)
	}
}

// Callback handles the callback from the identity provider
func (ac *AuthController) Callback(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Get session
		sess := session.GetSession(r)

		// Verify state
		storedState := sess.Get(sessionState)
		if storedState == nil {
			http.Error(w, "State not found in session", http.StatusBadRequest)
			return
		}

		if r.URL.Query().Get("state") != storedState.(string) {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		verifier, _ := sess.Get(sessionVerifier).(string)
		client, _ := sess.Get(sessionClient).(string)

		// Exchange the code for a token
		token, err := auth.ExchangeCode(r.Context(), r.URL.Query().Get("code"), verifier)
		if err != nil {
			ac.logger.Warn("authorization code exchange failed", zap.Error(err))
			http.Error(w, "Authentication failed", http.StatusUnauthorized)
			return
		}

		// Recover the team the login was started on: from the request host
		// when the callback arrives on a tenant host, otherwise from the
		// session snapshot taken at login time.
		team := middleware.TeamFromContext(r.Context())
		if team == nil {
			if teamID, ok := sess.Get(sessionLoginTeam).(string); ok && teamID != "" {
				team, err = ac.teams.GetTeamByID(r.Context(), teamID)
				if err != nil {
					ac.logger.Warn("failed to load login team", zap.String("team_id", teamID), zap.Error(err))
					http.Error(w, "Authentication failed", http.StatusUnauthorized)
					return
				}
			}
		}

		// Reconcile the identity and provision the account. Field-level
		// failure detail stays in the logs; the user only ever sees a
		// generic authentication failure.
		tc := services.TenantContext{
			Team:   team,
			Client: client,
		}
		account, err := ac.accounts.SignIn(r.Context(), tc, token)
		if err != nil {
			ac.logger.Warn("sign in failed", zap.Error(err))
			http.Error(w, "Authentication failed", http.StatusUnauthorized)
			return
		}

		// Store the user session
		sess.Set(sessionUserID, account.User.ID)
		sess.Set(sessionEmail, account.User.Email)
		sess.Set(sessionTeamID, account.Team.ID)

		// Clear the login flow state from session
		sess.Delete(sessionState)
		sess.Delete(sessionVerifier)
		sess.Delete(sessionClient)
		sess.Delete(sessionLoginTeam)

		ac.logger.Info("user signed in",
			zap.String("user_id", account.User.ID),
			zap.String("team_id", account.Team.ID),
			zap.String("client", account.Client),
			zap.Bool("new_user", account.IsNewUser),
			zap.Bool("new_team", account.IsNewTeam),
		)

		// Redirect to the intended destination or home
		redirect := "/"
		if stored, ok := sess.Get("redirect_after_login").(string); ok && stored != "" {
			redirect = stored
			sess.Delete("redirect_after_login")
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// Logout clears the user session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	sess.Delete(sessionUserID)
	sess.Delete(sessionEmail)
	sess.Delete(sessionTeamID)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
