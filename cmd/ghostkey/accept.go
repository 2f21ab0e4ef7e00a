package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"go.klb.dev/ghostkey/internal/rpcservice"
)

func newAcceptCmd() *cobra.Command {
	return newResolveCmd("accept", "Keep the pending ghost text and restore the clipboard",
		(*rpcservice.Client).Accept)
}

func newRejectCmd() *cobra.Command {
	return newResolveCmd("reject", "Delete the pending ghost text and restore the clipboard",
		(*rpcservice.Client).Reject)
}

// newResolveCmd builds accept and reject: both only make sense against the
// daemon that holds the pending insertion.
func newResolveCmd(use, short string, call func(*rpcservice.Client, context.Context, ...grpc.CallOption) error) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			setupCLILogging(v)
			client, done, err := dialIPC(v)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := callContext()
			defer cancel()
			return call(client, ctx)
		},
	}
	addSocketFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
	return cmd
}
