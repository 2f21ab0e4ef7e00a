package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the daemon and any pending ghost text",
		Long: `Displays the running daemon's backends and whether a deferred insertion
is waiting for accept or reject.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStatus(v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addSocketFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runStatus(v *viper.Viper) error {
	client, done, err := dialIPC(v)
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := callContext()
	defer cancel()
	st, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	if v.GetBool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Printf("Socket: %s\n\n", socketPath(v))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	keys := make([]string, 0, len(st))
	for k := range st {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", k, st[k])
	}
	return tw.Flush()
}
