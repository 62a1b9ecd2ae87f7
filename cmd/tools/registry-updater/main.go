// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sustainatrend-search/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(now func() time.Time) *cobra.Command {
	var registryPath string

	root := &cobra.Command{
		Use:           "registry-updater",
		Short:         "Maintain the activity registry of BPMN service tasks",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&registryPath, "path", defaultRegistryPath, "path to registry file")

	root.AddCommand(
		newAddCmd(&registryPath, now),
		newUpdateCmd(&registryPath, now),
		newValidateCmd(&registryPath),
		newShowCmd(&registryPath),
	)
	return root
}

func newAddCmd(path *string, now func() time.Time) *cobra.Command {
	activity := registry.Activity{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if errors.Is(err, fs.ErrNotExist) {
				reg = registry.New(now())
			} else if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			activity.InputSchema = map[string]interface{}{}
			activity.OutputSchema = map[string]interface{}{}
			activity.ErrorCodes = []string{}
			activity.Workflows = []string{}
			activity.Tags = []string{}

			if err := reg.Add(activity, now()); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", activity.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&activity.ID, "id", "", "activity ID (e.g. realtime-search)")
	flags.StringVar(&activity.DisplayName, "display-name", "", "display name")
	flags.StringVar(&activity.Description, "description", "", "description")
	flags.StringVar(&activity.Category, "category", "", "category (e.g. search)")
	flags.StringVar(&activity.TaskType, "task-type", "", "Zeebe job type")
	flags.StringVar(&activity.Version, "version", "1.0.0", "version")
	flags.StringVar(&activity.ImplementationStatus, "status", "planned", "implementation status (planned, in-progress, completed, verified)")
	flags.StringVar(&activity.Timeout, "timeout", "10s", "job timeout")
	flags.IntVar(&activity.Retries, "retries", 0, "job retries")
	for _, name := range []string{"id", "display-name", "description", "category", "task-type"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUpdateCmd(path *string, now func() time.Time) *cobra.Command {
	var id, field, value string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Set one field of an activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(id, field, value, now()); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "activity ID to update")
	cmd.Flags().StringVar(&field, "field", "", "field to update (status, version, timeout, retries, ...)")
	cmd.Flags().StringVar(&value, "value", "", "new value")
	for _, name := range []string{"id", "field", "value"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check required fields, duplicates, timeouts and JSON schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed:\n%w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed (%d activities).\n", len(reg.Activities))
			return nil
		},
	}
}

func newShowCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print the registry, or a single activity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			var out interface{} = reg
			if len(args) == 1 {
				activity, ok := reg.Find(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", registry.ErrActivityNotFound, args[0])
				}
				out = activity
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
