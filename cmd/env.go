package cmd

import (
	"fmt"

	"github.com/agentic-research/agentstack/internal/files"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Read and extend the project .env",
}

var envGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the active value of a variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := files.OpenEnv(nil)
		if err != nil {
			return err
		}
		v, err := env.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every active variable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := files.OpenEnv(nil)
		if err != nil {
			return err
		}
		vars := env.Variables()
		for _, k := range env.Keys() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, vars[k])
		}
		return nil
	},
}

var envAddCmd = &cobra.Command{
	Use:   "add [key] [value]",
	Short: "Append a variable unless it is already defined",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := files.OpenEnv(nil)
		if err != nil {
			return err
		}
		if env.Has(args[0]) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already set, leaving it alone\n", args[0])
			return nil
		}
		return env.Update(func(env *files.EnvFile) error {
			return env.AppendIfNew(args[0], args[1])
		})
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Print name, version and description from pyproject.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := files.OpenProject(nil)
		if err != nil {
			return err
		}
		name, err := p.Name()
		if err != nil {
			return err
		}
		version, err := p.Version()
		if err != nil {
			return err
		}
		description, err := p.Description()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name: %s\nversion: %s\ndescription: %s\n", name, version, description)
		return nil
	},
}

func init() {
	envCmd.AddCommand(envGetCmd, envListCmd, envAddCmd)
	rootCmd.AddCommand(envCmd, projectCmd)
}
