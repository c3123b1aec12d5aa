package profile

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/japanime/backend/cmd/cli/config"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func loginForTest(t *testing.T) {
	t.Helper()
	t.Setenv("JAPANIME_TOKEN_FILE", filepath.Join(t.TempDir(), "tokens.json"))
	if err := config.SaveTokens(config.Tokens{AccessToken: "test-token"}); err != nil {
		t.Fatalf("SaveTokens: %v", err)
	}
}

func TestShowProfile_TableOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/profile" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"username":   "alice",
			"email":      "a@example.com",
			"age":        30,
			"created_at": "2024-05-01T12:00:00Z",
		})
	}))
	defer srv.Close()

	t.Setenv("JAPANIME_API_URL", srv.URL)
	loginForTest(t)

	cmd := showProfileCmd()
	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "alice") || !strings.Contains(out, "a@example.com") {
		t.Fatalf("expected profile fields in output, got: %s", out)
	}
}

func TestShowProfile_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"username": "alice", "email": "a@example.com"})
	}))
	defer srv.Close()

	t.Setenv("JAPANIME_API_URL", srv.URL)
	loginForTest(t)

	cmd := showProfileCmd()
	_ = cmd.Flags().Set("json", "true")

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, `"username": "alice"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}

func TestShowProfile_NotLoggedIn(t *testing.T) {
	t.Setenv("JAPANIME_TOKEN_FILE", filepath.Join(t.TempDir(), "missing.json"))

	cmd := showProfileCmd()
	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "Please login first") {
		t.Fatalf("expected login prompt, got: %s", out)
	}
}

func TestUpdateProfile_SendsOnlyChangedFlags(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PATCH" || r.URL.Path != "/api/update-profile" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Profile updated successfully"})
	}))
	defer srv.Close()

	t.Setenv("JAPANIME_API_URL", srv.URL)
	loginForTest(t)

	cmd := updateProfileCmd()
	_ = cmd.Flags().Set("age", "31")

	if err := cmd.RunE(cmd, []string{}); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("expected only age in payload, got: %v", received)
	}
	if v, ok := received["age"].(float64); !ok || v != 31 {
		t.Errorf("unexpected age payload: %v", received["age"])
	}
}

func TestUpdateProfile_NoFlags(t *testing.T) {
	loginForTest(t)

	cmd := updateProfileCmd()
	if err := cmd.RunE(cmd, []string{}); err == nil {
		t.Fatal("expected error when no flags set")
	}
}
