package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/japanime/backend/internal/middleware"
	"github.com/japanime/backend/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// Profile Handler
// ==========================
type ProfileHandler struct {
	Users *repo.UserRepo
}

// ==========================
// Get Profile
// ==========================
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("profile: lookup failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"username":      user.Username,
		"email":         user.Email,
		"age":           user.Age,
		"created_at":    user.CreatedAt.Format(time.RFC3339),
		"profile_photo": user.ProfilePhoto,
	})
}

// ==========================
// Update Profile (partial)
// ==========================
// Fields absent from the patch are untouched. A key that is present carries
// an overwrite even when its value is null: `{"age": null}` clears the age.
// A present but empty (or null) password is a no-op for that field.
// Username/email uniqueness is not re-checked here; a duplicate hits the
// unique index and surfaces as a 500, matching the behavior this service
// replaced.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Decoded as raw fields so a present null is distinguishable from an
	// absent key.
	var input map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if len(input) == 0 {
		JSONError(w, "No data provided", http.StatusBadRequest)
		return
	}

	var patch repo.UserPatch
	if raw, ok := input["username"]; ok {
		if err := json.Unmarshal(raw, &patch.Username); err != nil {
			JSONError(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}
	if raw, ok := input["email"]; ok {
		if err := json.Unmarshal(raw, &patch.Email); err != nil {
			JSONError(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}
	if raw, ok := input["age"]; ok {
		if err := json.Unmarshal(raw, &patch.Age); err != nil {
			JSONError(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		patch.AgeSet = true
	}
	if raw, ok := input["password"]; ok {
		var password *string
		if err := json.Unmarshal(raw, &password); err != nil {
			JSONError(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if password != nil && *password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
			if err != nil {
				JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
				return
			}
			hashStr := string(hash)
			patch.PasswordHash = &hashStr
		}
	}

	user, err := h.Users.Update(r.Context(), userID, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("profile: update failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Profile updated successfully",
		"username":      user.Username,
		"email":         user.Email,
		"age":           user.Age,
		"profile_photo": user.ProfilePhoto,
	})
}
