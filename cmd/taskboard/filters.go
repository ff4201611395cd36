package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mohitdudhat22/Task-Management-App/internal/board"

	"github.com/spf13/cobra"
)

var presetsFile string

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Manage saved filter presets",
}

var filtersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := loadPresets()
		if err != nil {
			return err
		}
		for _, p := range presets.List() {
			fmt.Printf("%s\tsort=%s\t%v\n", p.Name, p.SortBy, p.Filters)
		}
		return nil
	},
}

var filtersRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := loadPresets()
		if err != nil {
			return err
		}
		if !presets.Remove(args[0]) {
			return fmt.Errorf("no preset named %q", args[0])
		}
		return savePresets(presets)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&presetsFile, "presets", defaultPresetsFile(), "saved filter presets file")
	filtersCmd.AddCommand(filtersListCmd, filtersRemoveCmd)
}

func defaultPresetsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "taskboard-filters.json"
	}
	return filepath.Join(dir, "taskboard", "filters.json")
}

func loadPresets() (*board.SavedFilters, error) {
	f, err := os.Open(presetsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &board.SavedFilters{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	presets, err := board.DecodeSavedFilters(f)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", presetsFile, err)
	}
	return presets, nil
}

func savePresets(presets *board.SavedFilters) error {
	if err := os.MkdirAll(filepath.Dir(presetsFile), 0o755); err != nil {
		return err
	}
	f, err := os.Create(presetsFile)
	if err != nil {
		return err
	}
	if err := presets.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
