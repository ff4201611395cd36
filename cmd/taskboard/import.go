package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mohitdudhat22/Task-Management-App/internal/service"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Create many tasks from a JSON array",
	Long: `Create tasks in one batch. Either every row is created or none is.

Each row has title, description, status, priority, dueDate and assignedTo,
where assignedTo is a user name or id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var items []service.BulkItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		created, err := newAPI().BulkCreate(cmd.Context(), items)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Printf("imported %d task(s)\n", len(created))
		return nil
	},
}
