package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/japanime/backend/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers auth-related CLI commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), refreshCmd(), logoutCmd())
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	var username, email, password string
	var age int

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long:  "Create a new account on the Japanime backend. Age is optional.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" || password == "" {
				return fmt.Errorf("username, email and password are required")
			}

			payload := map[string]any{
				"username": username,
				"email":    email,
				"password": password,
			}
			if cmd.Flags().Changed("age") {
				payload["age"] = age
			}

			if err := callJSONEndpoint(http.DefaultClient, "POST", "/api/register", payload, nil); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}

			fmt.Println("User registered successfully! You can now login.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email for the new account")
	cmd.Flags().StringVar(&password, "password", "", "Password for the new account")
	cmd.Flags().IntVar(&age, "age", 0, "Age (optional)")

	return cmd
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var identifier, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Japanime backend",
		Long:  "Authenticate with a username or email and store the JWT tokens for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if identifier == "" || password == "" {
				return fmt.Errorf("identifier and password are required")
			}

			var tokens config.Tokens
			payload := map[string]string{"identifier": identifier, "password": password}
			if err := callJSONEndpoint(http.DefaultClient, "POST", "/api/login", payload, &tokens); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if tokens.AccessToken == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveTokens(tokens); err != nil {
				return fmt.Errorf("failed to save tokens: %w", err)
			}

			fmt.Println("Login successful. Tokens stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "Username or email to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Account password")

	return cmd
}

// ==========================
// Refresh
// ==========================
func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := config.LoadTokens()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			var out struct {
				AccessToken string `json:"access_token"`
			}
			payload := map[string]string{"refresh_token": tokens.RefreshToken}
			if err := callJSONEndpoint(http.DefaultClient, "POST", "/api/refresh", payload, &out); err != nil {
				return fmt.Errorf("failed to refresh: %w", err)
			}

			tokens.AccessToken = out.AccessToken
			if err := config.SaveTokens(tokens); err != nil {
				return fmt.Errorf("failed to save tokens: %w", err)
			}

			fmt.Println("Access token refreshed.")
			return nil
		},
	}
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove locally stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearTokens(); err != nil {
				return err
			}
			fmt.Println("Logged out successfully.")
			return nil
		},
	}
}

func callJSONEndpoint(client *http.Client, method, path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}

	return nil
}
