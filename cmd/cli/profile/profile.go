package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/japanime/backend/cmd/cli/config"
	"github.com/japanime/backend/cmd/cli/output"
	"github.com/spf13/cobra"
)

// InitProfile registers profile commands on the root command.
func InitProfile(rootCmd *cobra.Command) {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "View and update your profile",
	}

	profileCmd.AddCommand(showProfileCmd(), updateProfileCmd())
	rootCmd.AddCommand(profileCmd)
}

// ==========================
// SHOW
// ==========================
func showProfileCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the logged-in user's profile",
		Run: func(cmd *cobra.Command, args []string) {
			tokens, err := config.LoadTokens()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/api/profile", nil)
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				fmt.Printf("API error: %s\n", string(body))
				return
			}

			var prof struct {
				Username     string  `json:"username"`
				Email        string  `json:"email"`
				Age          *int    `json:"age"`
				CreatedAt    string  `json:"created_at"`
				ProfilePhoto *string `json:"profile_photo"`
			}
			if err := json.Unmarshal(body, &prof); err != nil {
				fmt.Println(err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(prof, "", "  ")
				fmt.Println(string(b))
				return
			}

			age := ""
			if prof.Age != nil {
				age = fmt.Sprintf("%d", *prof.Age)
			}
			photo := ""
			if prof.ProfilePhoto != nil {
				photo = *prof.ProfilePhoto
			}

			output.RenderTable(
				[]string{"Username", "Email", "Age", "Created", "Photo"},
				[][]interface{}{{prof.Username, prof.Email, age, prof.CreatedAt, photo}},
			)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")

	return cmd
}

// ==========================
// UPDATE
// ==========================
func updateProfileCmd() *cobra.Command {
	var username, email, password string
	var age int

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		Long:  "Send a partial update. Only flags you set are sent to the API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := config.LoadTokens()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			payload := map[string]any{}
			if cmd.Flags().Changed("username") {
				payload["username"] = username
			}
			if cmd.Flags().Changed("email") {
				payload["email"] = email
			}
			if cmd.Flags().Changed("password") {
				payload["password"] = password
			}
			if cmd.Flags().Changed("age") {
				payload["age"] = age
			}
			if len(payload) == 0 {
				return fmt.Errorf("nothing to update: set at least one flag")
			}

			body, _ := json.Marshal(payload)
			req, _ := http.NewRequest("PATCH", config.APIURL()+"/api/update-profile", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API error: %s", string(respBody))
			}

			fmt.Println("Profile updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().IntVar(&age, "age", 0, "New age")

	return cmd
}
