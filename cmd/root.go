// Package cmd defines the CLI for the support agent.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "globus-agent",
	Short: "Globus Bank offline customer support agent",
	Long: `globus-agent is a local, offline customer support assistant.

It classifies incoming messages, retrieves product information from an
in-memory semantic index, and generates replies with a local model
served by Ollama. No customer data or conversation content leaves the
machine.

Run 'globus-agent serve' to start the HTTP API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
