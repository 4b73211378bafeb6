package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/hbnb/internal/cli"
	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/storage"
	"github.com/spf13/cobra"
)

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Inspect the persisted objects",
	Long:  `List, inspect, and remove objects without starting the console.`,
}

var objectsLsCmd = &cobra.Command{
	Use:   "ls [class]",
	Short: "List stored objects, optionally of one class",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		class := ""
		if len(args) == 1 {
			class = args[0]
		}
		objs := engine.All(class)
		if len(objs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No objects found.")
			return nil
		}
		for _, obj := range objs {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\t%s\n", obj.Key(), obj.CreatedAt.Format(models.TimeLayout))
		}
		return nil
	},
}

var objectsInspectCmd = &cobra.Command{
	Use:   "inspect <Class.id>",
	Short: "Print one object as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		obj, ok := engine.Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, args[0])
		}
		data, err := json.MarshalIndent(obj.ToMap(), "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling object: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var objectsRmCmd = &cobra.Command{
	Use:   "rm <Class.id>...",
	Short: "Remove one or more objects",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		var missing []string
		for _, key := range args {
			if engine.Delete(key) {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed '%s'\n", key)
			} else {
				missing = append(missing, key)
			}
		}
		if err := engine.Save(cmd.Context()); err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, strings.Join(missing, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(objectsCmd)
	objectsCmd.AddCommand(objectsLsCmd)
	objectsCmd.AddCommand(objectsInspectCmd)
	objectsCmd.AddCommand(objectsRmCmd)
}

func openEngine(cmd *cobra.Command) (*storage.Engine, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.OpenStore(cmd.Context(), cfg, storage.WithLogger(cli.CreateLogger(cfg.Debug)))
}
