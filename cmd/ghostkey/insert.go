package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newInsertCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "insert [TEXT...]",
		Short: "Insert ghost text at the caret of the focused application",
		Long: `Inserts TEXT (or standard input when TEXT is omitted or "-") below the
caret, separated from the content above by two line breaks.

By default the clipboard is restored right after the paste. With --defer the
text stays pending until "ghostkey accept" or "ghostkey reject"; that needs a
running daemon to hold the pending state.

Without a daemon the insertion runs in this process.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runInsert(v, args) },
	}

	cmd.Flags().Bool("defer", false, "leave the text pending until accept or reject")
	addSocketFlags(cmd)
	addTimingFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runInsert(v *viper.Viper, args []string) error {
	setupCLILogging(v)

	text, err := insertText(args, os.Stdin)
	if err != nil {
		return err
	}
	deferred := v.GetBool("defer")

	client, done, err := dialIPC(v)
	switch {
	case err == nil:
		defer done()
		ctx, cancel := callContext()
		defer cancel()
		if deferred {
			return client.InsertDeferred(ctx, text)
		}
		return client.InsertImmediate(ctx, text)
	case !errors.Is(err, errNoDaemon):
		return err
	case deferred:
		return fmt.Errorf("--defer: %w", err)
	}

	session, err := openLocal(v)
	if err != nil {
		return err
	}
	defer session.Close()
	return session.InsertImmediate(text)
}

func insertText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}
