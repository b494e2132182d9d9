package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/service"
)

// UserHandler owns the registration endpoint.
type UserHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewUserHandler(auth *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: auth, logger: logger}
}

// decodeRegisterRequest decodes the registration body field by field.
//
// A plain Decode into a struct aborts on the first wrong-typed field, which
// would report a type mismatch even when a required field is missing
// entirely. Decoding into raw messages lets every field be classified —
// absent, a string, or present-but-wrong-type — so the service pipeline can
// apply its checks in order.
func decodeRegisterRequest(r *http.Request) (service.RegisterInput, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return service.RegisterInput{}, apperror.InvalidInput("", "Invalid JSON body")
	}

	var in service.RegisterInput
	for _, f := range []struct {
		name string
		dst  **string
	}{
		{"username", &in.Username},
		{"password", &in.Password},
		{"fullname", &in.Fullname},
	} {
		raw, ok := body[f.name]
		if !ok {
			continue
		}
		var s string
		if string(raw) == "null" || json.Unmarshal(raw, &s) != nil {
			// Present but not a string. An empty value marks the field as
			// present; NonString carries the mismatch to the pipeline.
			empty := ""
			*f.dst = &empty
			in.NonString = append(in.NonString, f.name)
			continue
		}
		*f.dst = &s
	}

	return in, nil
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/users
// 201 with the public user (no digest — model.User's json tag guarantees
// that), 422 on validation failure, 400 on a duplicate username.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	in, err := decodeRegisterRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, user.ID))
	writeJSON(w, http.StatusCreated, user)
}
