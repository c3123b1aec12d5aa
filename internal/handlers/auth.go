package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/japanime/backend/internal/auth"
	"github.com/japanime/backend/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// emailShape is the accepted email form: something, "@", something, ".", something.
var emailShape = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

var validate = validator.New()

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users      *repo.UserRepo
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ==========================
// Register
// ==========================
// Registration does not issue a token; the client logs in separately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"max=64"`
		Email    string `json:"email" validate:"max=255"`
		Password string `json:"password" validate:"max=128"`
		Age      *int   `json:"age" validate:"omitempty,gte=0,lte=150"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.Password = strings.TrimSpace(input.Password)

	fields := make(map[string]string)
	if input.Username == "" {
		fields["username"] = "required"
	}
	if input.Email == "" {
		fields["email"] = "required"
	}
	if input.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "username, email, and password are required", fields, http.StatusBadRequest)
		return
	}

	if !emailShape.MatchString(input.Email) {
		JSONError(w, "Invalid email format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Pre-check mirrors the insert-time unique index; the pair is not atomic,
	// so Create can still report a conflict under concurrent registration.
	exists, err := h.Users.ExistsByUsernameOrEmail(r.Context(), input.Username, input.Email)
	if err != nil {
		slog.Error("register: uniqueness check failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if exists {
		JSONError(w, "Username or email already exists", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if _, err := h.Users.Create(r.Context(), input.Username, input.Email, string(hash), input.Age); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			JSONError(w, "Username or email already exists", http.StatusConflict)
			return
		}
		slog.Error("register: create user failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully"})
}

// ==========================
// Login (identifier may be a username or an email)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Identifier string `json:"identifier"`
		// Deprecated login shape sent only the email; accept it as the identifier.
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(input.Email)
	}
	password := strings.TrimSpace(input.Password)

	if identifier == "" || password == "" {
		JSONError(w, "Missing username/email or password", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByIdentifier(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("login: lookup failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		JSONError(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	accessToken, err := auth.GenerateToken(user.ID, auth.TypeAccess, h.Secret, h.AccessTTL)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	refreshToken, err := auth.GenerateToken(user.ID, auth.TypeRefresh, h.Secret, h.RefreshTTL)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user.Public(),
	})
}

// ==========================
// Refresh (exchange a refresh token for a new access token)
// ==========================
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.RefreshToken == "" {
		JSONError(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	claims, err := auth.ParseToken(input.RefreshToken, h.Secret)
	if err != nil || claims.TokenType != auth.TypeRefresh {
		JSONError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	accessToken, err := auth.GenerateToken(user.ID, auth.TypeAccess, h.Secret, h.AccessTTL)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"access_token": accessToken})
}
