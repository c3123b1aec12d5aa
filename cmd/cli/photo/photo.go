package photo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/japanime/backend/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitPhoto registers profile-photo commands on the root command.
func InitPhoto(rootCmd *cobra.Command) {
	photoCmd := &cobra.Command{
		Use:   "photo",
		Short: "Manage your profile photo",
	}

	photoCmd.AddCommand(uploadPhotoCmd(), removePhotoCmd())
	rootCmd.AddCommand(photoCmd)
}

// ==========================
// UPLOAD
// ==========================
func uploadPhotoCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a profile photo",
		Long:  "Upload an image file (png, jpg, jpeg, gif) as your profile photo.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			tokens, err := config.LoadTokens()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			fw, err := mw.CreateFormFile("photo", filepath.Base(file))
			if err != nil {
				return err
			}
			if _, err := io.Copy(fw, f); err != nil {
				return err
			}
			if err := mw.Close(); err != nil {
				return err
			}

			req, _ := http.NewRequest("POST", config.APIURL()+"/api/upload-photo", &buf)
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
			req.Header.Set("Content-Type", mw.FormDataContentType())

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API error: %s", string(body))
			}

			var out struct {
				ProfilePhoto string `json:"profile_photo"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}

			fmt.Println("Photo uploaded:", out.ProfilePhoto)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the image file")

	return cmd
}

// ==========================
// REMOVE
// ==========================
func removePhotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove your profile photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := config.LoadTokens()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			req, _ := http.NewRequest("POST", config.APIURL()+"/api/remove-photo", nil)
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API error: %s", string(body))
			}

			fmt.Println("Profile photo removed.")
			return nil
		},
	}
}
