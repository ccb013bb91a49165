package main

import (
	"github.com/spf13/cobra"

	"lucent/src/server"
	"lucent/src/util"
)

func newServerCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "run the Lucent language server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := util.DefaultOptions()
			opt.Verbose = verbose
			opt.Log = newLogger(verbose)
			defer opt.Log.Sync()
			return server.Run(opt)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit debug-level logging")
	return cmd
}
