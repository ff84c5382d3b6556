package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/imalexduke/outline/services"
	"github.com/imalexduke/outline/userctx"
)

type UserController struct {
	teams  services.TeamService
	logger *zap.Logger
}

func NewUserController(teams services.TeamService, logger *zap.Logger) *UserController {
	return &UserController{teams: teams, logger: logger}
}

// Me returns the signed-in user and their team
func (uc *UserController) Me(w http.ResponseWriter, r *http.Request) {
	userID := userctx.GetUserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := uc.teams.GetUserByID(r.Context(), userID)
	if err != nil {
		uc.logger.Warn("failed to load signed-in user", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	team, err := uc.teams.GetTeamByID(r.Context(), user.TeamID)
	if err != nil {
		uc.logger.Error("failed to load team for user", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": user,
		"team": team,
	})
}
