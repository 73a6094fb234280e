package main

import "github.com/agentic-research/agentstack/cmd"

func main() {
	cmd.Execute()
}
