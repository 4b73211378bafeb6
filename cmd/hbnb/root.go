package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hbnb/internal/cli"
	"github.com/aretw0/hbnb/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hbnb",
	Short: "HBNB is an interactive console for the HBNB object store",
	Long: `HBNB reads one command per line and creates, shows, updates and destroys
objects persisted to a JSON file (or memory, SQLite or Redis).

Both "show User <id>" and "User.show(<id>)" are accepted. Type "help" inside the
console to list the commands.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		return cli.RunSession(cmd.Context(), cfg, cli.Session{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: file, memory, sqlite or redis")
	rootCmd.PersistentFlags().String("file", "", "Path of the file or sqlite database")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Backend, _ = flags.GetString("backend")
	opts.File, _ = flags.GetString("file")
	opts.Debug, _ = flags.GetBool("debug")
	return opts.Resolve()
}
