package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/ghostkey/internal/rpcservice"
)

func newReadCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "read N",
		Short: "Print up to N characters before the caret",
		Long: `Selects up to N characters backwards from the caret, copies them and
prints them, then puts the caret and the clipboard back. Near the start of a
field fewer than N characters are printed.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runRead(cmd, v, args[0]) },
	}

	addSocketFlags(cmd)
	addTimingFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runRead(cmd *cobra.Command, v *viper.Viper, arg string) error {
	setupCLILogging(v)

	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return fmt.Errorf("N: %w", err)
	}
	if n > rpcservice.MaxReadContext {
		return fmt.Errorf("N: at most %d characters", rpcservice.MaxReadContext)
	}

	var text string
	client, done, err := dialIPC(v)
	switch {
	case err == nil:
		defer done()
		ctx, cancel := callContext()
		defer cancel()
		if text, err = client.ReadContext(ctx, uint32(n)); err != nil {
			return err
		}
	case errors.Is(err, errNoDaemon):
		session, err := openLocal(v)
		if err != nil {
			return err
		}
		defer session.Close()
		if text, err = session.ReadBeforeCaret(int(n)); err != nil {
			return err
		}
	default:
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
