package cmd

import (
	"fmt"

	"github.com/agentic-research/agentstack/internal/conf"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change agentstack.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings document in canonical form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := conf.OpenConfig(nil)
		if err != nil {
			return err
		}
		data, err := c.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every settings key and its value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := conf.OpenConfig(nil)
		if err != nil {
			return err
		}
		for _, key := range conf.Keys {
			v, err := c.Get(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, v)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one settings value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := conf.OpenConfig(nil)
		if err != nil {
			return err
		}
		v, err := c.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: `Set one settings value ("null" clears optional keys)`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := conf.OpenConfig(nil)
		if err != nil {
			return err
		}
		return c.Update(func(c *conf.ConfigFile) error {
			return c.Set(args[0], args[1])
		})
	},
}

var configAddToolCmd = &cobra.Command{
	Use:   "add-tool [name]",
	Short: "Record a tool in the settings document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := conf.OpenConfig(nil)
		if err != nil {
			return err
		}
		return c.Update(func(c *conf.ConfigFile) error {
			if !c.AddTool(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already installed\n", args[0])
			}
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the directory is an AgentStack project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := conf.VerifyProject(nil); err != nil {
			return err
		}
		framework, err := conf.Framework(nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %s project at %s\n", framework, conf.GetPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configListCmd, configGetCmd, configSetCmd, configAddToolCmd)
	rootCmd.AddCommand(configCmd, verifyCmd)
}
