package main

import (
	"fmt"
	"os"

	"github.com/mohitdudhat22/Task-Management-App/internal/client"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	serverURL string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:     "taskboard",
	Short:   "Command line board for the task API",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(os.Getenv("LOG_LEVEL"), false)
		// presets are local, no server needed
		if cmd == filtersCmd || cmd.Parent() == filtersCmd {
			return nil
		}
		if authToken == "" {
			return fmt.Errorf("no token: pass --token or set TASKBOARD_TOKEN")
		}
		return nil
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TASKBOARD_URL", "http://127.0.0.1:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("TASKBOARD_TOKEN"), "bearer token")

	rootCmd.AddCommand(listCmd, watchCmd, importCmd, assignCmd, usersCmd, filtersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAPI() *client.API {
	return client.NewAPI(serverURL, authToken)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
