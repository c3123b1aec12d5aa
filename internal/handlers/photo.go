package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/japanime/backend/internal/metrics"
	"github.com/japanime/backend/internal/middleware"
	"github.com/japanime/backend/internal/repo"
	"github.com/japanime/backend/internal/uploads"
)

// ==========================
// Photo Handler
// ==========================
type PhotoHandler struct {
	Users *repo.UserRepo
	Store *uploads.Store
}

// ==========================
// Upload Photo
// ==========================
// A replaced photo's old file is left on disk; only the current pointer moves.
// The optional sweep job reclaims unreferenced files.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.Users.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		metrics.IncPhotoUploads("rejected")
		JSONError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		metrics.IncPhotoUploads("rejected")
		JSONError(w, "No selected file", http.StatusBadRequest)
		return
	}

	if !uploads.Allowed(header.Filename) {
		metrics.IncPhotoUploads("rejected")
		JSONError(w, "Invalid file type", http.StatusBadRequest)
		return
	}

	filename, err := h.Store.Save(file, header.Filename)
	if err != nil {
		metrics.IncPhotoUploads("error")
		slog.Error("upload: save failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	url := h.Store.URL(filename)
	user, err := h.Users.SetProfilePhoto(r.Context(), userID, &url)
	if err != nil {
		metrics.IncPhotoUploads("error")
		slog.Error("upload: set profile photo failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncPhotoUploads("accepted")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Photo uploaded successfully",
		"filename":      filename,
		"profile_photo": user.ProfilePhoto,
	})
}

// ==========================
// Remove Photo
// ==========================
func (h *PhotoHandler) Remove(w http.ResponseWriter, r *http.Request) {
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
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if user.ProfilePhoto == nil {
		JSONError(w, "No profile photo to remove", http.StatusBadRequest)
		return
	}

	filename := uploads.FilenameFromURL(*user.ProfilePhoto)
	if err := h.Store.Remove(filename); err != nil {
		// The pointer is still cleared; a stray file is reclaimed by the sweep.
		slog.Warn("remove: delete file failed", "filename", filename, "err", err)
	}

	if _, err := h.Users.SetProfilePhoto(r.Context(), userID, nil); err != nil {
		slog.Error("remove: clear profile photo failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncPhotoRemovals()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Profile photo removed"})
}

// ==========================
// Serve Uploaded File
// ==========================
// Filenames with path separators or ".." never resolve, so requests cannot
// escape the uploads root.
func (h *PhotoHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	path, err := h.Store.Resolve(filename)
	if err != nil {
		JSONError(w, "file not found", http.StatusNotFound)
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		JSONError(w, "file not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, path)
}
