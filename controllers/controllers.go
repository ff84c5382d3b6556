package controllers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/imalexduke/outline/services"
)

// writeJSON renders the payload as a JSON response with the given status
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// Controllers holds all controller instances
type Controllers struct {
	Auth *AuthController
	User *UserController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, logger *zap.Logger) *Controllers {
	return &Controllers{
		Auth: NewAuthController(services.Accounts, services.Team, logger),
		User: NewUserController(services.Team, logger),
	}
}
