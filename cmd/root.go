// Package cmd holds the omega-summarizer command line.
package cmd

import (
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/omega-summarizer/pkg/config"
	logx "github.com/tanpawarit/omega-summarizer/pkg/logger"
)

func newRootCMD() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "omega-summarizer",
		Short:         "Summarize web articles, YouTube videos and audio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configx.SetEnvFile(envFile)
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*logCfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file (default ./.env when present)")

	root.AddCommand(serveCMD(), summarizeCMD(), historyCMD())
	return root
}

func Execute() error {
	return newRootCMD().Execute()
}
