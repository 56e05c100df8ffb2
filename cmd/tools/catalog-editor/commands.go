// cmd/tools/catalog-editor/commands.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"text/tabwriter"

	"activity-signup/pkg/catalog"

	"github.com/spf13/cobra"
)

const defaultCatalogPath = "configs/activities.json"

func newRootCmd() *cobra.Command {
	var path string

	root := &cobra.Command{
		Use:   "catalog-editor",
		Short: "Edit the activity catalog the signup server is seeded from",
		Long: `Edit the activity catalog the signup server is seeded from.

Commands that modify the catalog start from the built-in catalog when the
file does not exist yet.

Examples:
  catalog-editor validate --path configs/activities.json
  catalog-editor add --name "Robotics" --description "Build robots" --schedule "Mondays, 4:00 PM" --max 8
  catalog-editor update --name "Chess Club" --field max_participants --value 16
  catalog-editor list --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&path, "path", "p", defaultCatalogPath, "path to the catalog file")

	root.AddCommand(
		newValidateCmd(&path),
		newAddCmd(&path),
		newUpdateCmd(&path),
		newListCmd(&path),
	)
	return root
}

func newValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the catalog against its schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(*path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s is valid (%d activities)\n", *path, len(c.Activities))
			return nil
		},
	}
}

func newAddCmd(path *string) *cobra.Command {
	var entry catalog.Entry

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadOrDefault(*path)
			if err != nil {
				return err
			}
			if err := c.Add(entry); err != nil {
				return err
			}
			if err := c.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", entry.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&entry.Name, "name", "", "activity name (e.g., Robotics Club)")
	cmd.Flags().StringVar(&entry.Description, "description", "", "description")
	cmd.Flags().StringVar(&entry.Schedule, "schedule", "", "schedule (e.g., Mondays, 4:00 PM - 5:00 PM)")
	cmd.Flags().IntVar(&entry.MaxParticipants, "max", 0, "maximum number of participants")
	cmd.Flags().StringArrayVar(&entry.Participants, "participant", nil, "initial participant email (repeatable)")
	for _, name := range []string{"name", "description", "schedule", "max"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUpdateCmd(path *string) *cobra.Command {
	var name, field, value string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change one field of an activity",
		Long:  "Change one field of an activity. Supported fields: description, schedule, max_participants.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadOrDefault(*path)
			if err != nil {
				return err
			}
			if err := c.Update(name, field, value); err != nil {
				return err
			}
			if err := c.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.%s to %s\n", name, field, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "activity to update")
	cmd.Flags().StringVar(&field, "field", "", "field to update")
	cmd.Flags().StringVar(&value, "value", "", "new value")
	for _, f := range []string{"name", "field", "value"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newListCmd(path *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities with their enrollment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadOrDefault(*path)
			if err != nil {
				return err
			}

			entries := append([]catalog.Entry(nil), c.Activities...)
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tENROLLED\tSCHEDULE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d/%d\t%s\n", e.Name, len(e.Participants), e.MaxParticipants, e.Schedule)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func loadOrDefault(path string) (*catalog.Catalog, error) {
	c, err := catalog.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return catalog.Default(), nil
	}
	return c, err
}
