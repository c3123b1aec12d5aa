package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const defaultAPIURL = "http://localhost:8080"

// APIURL returns the base URL for the Japanime backend API.
// It can be overridden with the JAPANIME_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("JAPANIME_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// Tokens holds the JWT pair returned by the login endpoint.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ==========================
// Token Storage
// ==========================

// SaveTokens writes the token pair to the user's config directory.
func SaveTokens(t Tokens) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadTokens reads the stored token pair. It returns an error when no
// login has happened yet.
func LoadTokens() (Tokens, error) {
	var t Tokens
	path, err := tokenPath()
	if err != nil {
		return t, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return t, err
	}
	return t, nil
}

// ClearTokens removes the stored token file. Missing file is not an error.
func ClearTokens() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func tokenPath() (string, error) {
	if v := os.Getenv("JAPANIME_TOKEN_FILE"); v != "" {
		return v, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "japanime", "tokens.json"), nil
}
