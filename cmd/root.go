package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "fb",
		Short:         "Fishbowl: a shared bowl of scraps for party games",
		Long:          "fb runs Fishbowl game sessions. Players add scraps of text to a shared bowl, draw them into their hands, and pass, take, discard or return them.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $HOME/.config/fishbowl/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(opts),
		newPlayCmd(opts),
	)

	return rootCmd
}
