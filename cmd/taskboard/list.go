package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/board"
	"github.com/mohitdudhat22/Task-Management-App/internal/domain"

	"github.com/spf13/cobra"
)

var (
	listFilters []string
	listSort    string
	listPreset  string
	listSave    string
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tasks with filters and sorting",
	Long: `List the tasks visible to you.

Examples:
  taskboard list --filter status=pending --sort dueDate
  taskboard list --filter priority=high --save urgent
  taskboard list --preset urgent --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringSliceVarP(&listFilters, "filter", "f", nil, "field=value, repeatable (title, status, priority, dueDate, ...)")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "sort by dueDate, priority or status")
	listCmd.Flags().StringVarP(&listPreset, "preset", "p", "", "apply a saved filter preset")
	listCmd.Flags().StringVar(&listSave, "save", "", "save the given filters and sort under this name")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	filters, err := parseFilters(listFilters)
	if err != nil {
		return err
	}
	sortBy := board.SortKey(listSort)

	presets, err := loadPresets()
	if err != nil {
		return err
	}
	if listPreset != "" {
		p, ok := presets.Load(listPreset)
		if !ok {
			return fmt.Errorf("no preset named %q", listPreset)
		}
		for k, v := range p.Filters {
			if _, set := filters[k]; !set {
				filters[k] = v
			}
		}
		if sortBy == board.SortNone {
			sortBy = p.SortBy
		}
	}
	if listSave != "" {
		if err := presets.Save(listSave, filters, sortBy); err != nil {
			return err
		}
		if err := savePresets(presets); err != nil {
			return err
		}
	}

	tasks, err := newAPI().ListTasks(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	tasks = board.View(tasks, filters, sortBy)

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}
	printTasks(tasks)
	return nil
}

func parseFilters(raw []string) (board.Filters, error) {
	f := board.Filters{}
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid filter %q, want field=value", kv)
		}
		f[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return f, nil
}

func printTasks(tasks []*domain.Task) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, due)
	}
	w.Flush()
	fmt.Printf("%d task(s)\n", len(tasks))
}
