package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "helpdesk",
		Short:         "AI support agent with a local knowledge base",
		Long:          `A customer support agent backed by retrieval over local documents, tool calls for tickets and orders, and pluggable language model providers.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	setHelpWithExternals(rootCmd)
	addSubcommands(rootCmd)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "config.yaml", "Path to the YAML config file")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command) {
	root.AddCommand(
		NewServeCmd(),
		NewAskCmd(),
		NewIndexCmd(),
		NewStatusCmd(),
	)
}

func setHelpWithExternals(cmd *cobra.Command) {
	defaultHelp := cmd.HelpFunc()

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		defaultHelp(c, args)
		printExternalCommands(c)
	})
}

func printExternalCommands(cmd *cobra.Command) {
	externals := listExternalCommands()
	if len(externals) == 0 {
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nExternal commands (helpdesk-*):")
	for _, name := range externals {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
}
