package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yule44ka/workflow-agent/internal/config"
	"github.com/yule44ka/workflow-agent/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries what PersistentPreRunE resolves for the subcommands.
type app struct {
	flags struct {
		configPath string
		envFile    string
		logLevel   string
		logFormat  string
	}
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "workflow-agent",
		Short: "Find the YouTrack workflow rules behind unexpected behaviour",
		Long: `workflow-agent collects the workflow rules that are enabled for a YouTrack
project and hands them, with reference documentation, to an LLM host that
explains which rule caused the behaviour a user reported.

The YouTrack address and token are read from YOUTRACK_URL (or DOMAIN) and
YOUTRACK_TOKEN, from a .env file, or from a YAML file given with --config.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.flags.configPath, "config", "", "YAML config file")
	f.StringVar(&a.flags.envFile, "env-file", config.DefaultEnvFile, "dotenv file with credentials (ignored when missing)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	f.StringVar(&a.flags.logFormat, "log-format", "", "log format: text or json (default from config)")

	root.AddCommand(
		newServeCmd(a),
		newProjectCmd(a),
		newInvestigateCmd(a),
		newBriefCmd(a),
		newDocsCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and configures logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigPath: a.flags.configPath,
		EnvFile:    a.flags.envFile,
	})
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.LogFormat = a.flags.logFormat
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return fmt.Errorf("unknown log format %q (want text or json)", cfg.LogFormat)
	}
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())
	a.cfg = cfg
	return nil
}
