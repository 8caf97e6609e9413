package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored replay runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			storePath, err := opts.storePathOrDefault()
			if err != nil {
				return err
			}
			st, err := openStore(storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.Runs().List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFEATURE\tSTATE\tFRAMES\tFLUSHES\tSTARTED\tRECORDING")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
					r.ID, r.Feature, r.State, r.Frames, r.Flushes, r.StartedAt.Format(time.DateTime), r.Recording)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run and its batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storePath, err := opts.storePathOrDefault()
			if err != nil {
				return err
			}
			st, err := openStore(storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Runs().Delete(args[0]); err != nil {
				return fmt.Errorf("delete run %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}
