package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/service"
)

// AuthHandler owns the login endpoint.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"authToken"`
}

// HandleLogin runs the local protocol and returns a freshly minted bearer
// token. The successful payload is the token only — the user record is never
// the login response.
//
// HTTP: POST /api/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, apperror.InvalidInput("", "Missing credentials in request body"))
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// The location stays in the log; the response is the same for a bad
		// username and a bad password.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Location != "" {
			h.logger.Info("login rejected",
				slog.String("username", req.Username),
				slog.String("location", appErr.Location),
			)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AuthToken: token})
}
