package main

import (
	"fmt"
	"os"

	"github.com/japanime/backend/cmd/cli/auth"
	"github.com/japanime/backend/cmd/cli/photo"
	"github.com/japanime/backend/cmd/cli/profile"
	"github.com/japanime/backend/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()

	auth.InitAuth(rootCmd)
	profile.InitProfile(rootCmd)
	photo.InitPhoto(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
