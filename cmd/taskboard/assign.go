package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign [task-id] [user-id]",
	Short: "Assign a task to a user (admins only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := newAPI().AssignTask(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("assign: %w", err)
		}
		fmt.Printf("task %s assigned to %s\n", t.ID, *t.AssignedTo)
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := newAPI().ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tTASKS")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, u.Role, len(u.Tasks))
		}
		return w.Flush()
	},
}
