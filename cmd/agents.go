package cmd

import (
	"fmt"

	"github.com/agentic-research/agentstack/api"
	"github.com/agentic-research/agentstack/internal/agents"
	"github.com/agentic-research/agentstack/internal/conf"
	"github.com/spf13/cobra"
)

var agentFlags struct {
	role, goal, backstory, llm string
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Read and edit src/config/agents.yaml",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print agent names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := agents.AgentNames(nil)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print one agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := agents.OpenAgent(nil, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "name: %s\nrole: %s\ngoal: %s\nbackstory: %s\nllm: %s\n",
			a.Name, a.Role, a.Goal, a.Backstory, a.LLM)
		return nil
	},
}

var agentsSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Create an agent or change the given fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := agents.OpenAgent(nil, args[0])
		if err != nil {
			return err
		}
		// New agents take the project's default model, so the project
		// must be valid before one is created.
		var defaultModel string
		if !a.Exists() {
			c, err := conf.OpenConfig(nil)
			if err != nil {
				return fmt.Errorf("not an agentstack project: %w", err)
			}
			defaultModel = api.StringValue(c.DefaultModel)
		}
		flags := cmd.Flags()
		return a.Update(func(a *agents.AgentConfig) error {
			if flags.Changed("role") {
				a.Role = agentFlags.role
			}
			if flags.Changed("goal") {
				a.Goal = agentFlags.goal
			}
			if flags.Changed("backstory") {
				a.Backstory = agentFlags.backstory
			}
			if flags.Changed("llm") {
				a.LLM = agentFlags.llm
			}
			if !a.Exists() {
				a.FillDefaults(defaultModel)
			}
			return nil
		})
	},
}

func init() {
	agentsSetCmd.Flags().StringVar(&agentFlags.role, "role", "", "Agent role")
	agentsSetCmd.Flags().StringVar(&agentFlags.goal, "goal", "", "Agent goal")
	agentsSetCmd.Flags().StringVar(&agentFlags.backstory, "backstory", "", "Agent backstory")
	agentsSetCmd.Flags().StringVar(&agentFlags.llm, "llm", "", "Model as provider/model")

	agentsCmd.AddCommand(agentsListCmd, agentsShowCmd, agentsSetCmd)
	rootCmd.AddCommand(agentsCmd)
}
