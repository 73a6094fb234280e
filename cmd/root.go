package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/agentstack/internal/conf"
	"github.com/agentic-research/agentstack/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	pathEnv     = "AGENTSTACK_PATH"
	logLevelEnv = "AGENTSTACK_LOG_LEVEL"
)

var (
	projectPath string
	logLevel    string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectPath, "path", "p", ".", "Project directory (env "+pathEnv+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error (env "+logLevelEnv+")")
}

var rootCmd = &cobra.Command{
	Use:           "agentstack",
	Short:         "Inspect and edit the files of an AgentStack project",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if v := os.Getenv(pathEnv); v != "" && !flags.Changed("path") {
			projectPath = v
		}
		if v := os.Getenv(logLevelEnv); v != "" && !flags.Changed("log-level") {
			logLevel = v
		}

		cfg := logging.DefaultConfig()
		cfg.Level = logging.ParseLevel(logLevel)
		cfg.Output = cmd.ErrOrStderr()
		log := logging.Init(cfg)
		conf.SetDefault(conf.NewWorkspace(projectPath, conf.WithLogger(log)))
		log.Debug().Str("path", projectPath).Msg("workspace resolved")
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	// A .env next to the invocation may carry AGENTSTACK_* settings.
	// Variables already in the environment win.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		logging.Logger.Debug().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
