package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/vfs/pkg/vfs"
)

type rootOptions struct {
	backend    string
	logLevel   string
	configFile string
	envFile    string
}

// newRootCommand builds the command tree. Every subcommand runs against the process-wide
// backend installed from flags, config file and environment.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "vfs",
		Short: "Filesystem operations over a swappable backend",
		Long: `vfs runs filesystem operations against either the operating system filesystem
(stdfs) or an in-memory one (memfs). The memory backend starts empty on every run, which
makes it useful for rehearsing plans with "vfs plan execute --backend memfs --dump".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configure(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.backend, "backend", "b", "", "Backend to use: stdfs or memfs (env VFS_BACKEND)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (env VFS_LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load environment variables from a .env file")

	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(
		newLsCommand(),
		newTreeCommand(),
		newCatCommand(),
		newWriteCommand(),
		newMkdirCommand(),
		newRmCommand(),
		newCpCommand(),
		newMvCommand(),
		newLnCommand(),
		newChmodCommand(),
		newStatCommand(),
	)
	cmd.AddCommand(newPlanCommand())

	return cmd
}

// configure layers settings: environment (optionally seeded from an env file), then the
// config file, then flags.
func configure(opts *rootOptions) error {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", opts.envFile, err)
		}
	}

	cfg, err := vfs.LoadConfig()
	if err != nil {
		return err
	}
	if opts.configFile != "" {
		if err := vfs.LoadConfigFile(opts.configFile, cfg); err != nil {
			return err
		}
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg.Apply()
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version number of vfs`,
		// Skips backend setup.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vfs version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
