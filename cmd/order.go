package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/gridx/pkg/orderstore"
)

func newOrderCmd(opts *rootOptions) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect or reset the remembered column order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&key, "key", "", "state key (default grid.orderKey from config)")

	// persister resolves the state file and key the grid would use.
	persister := func(cmd *cobra.Command) (*orderstore.Persister, *orderstore.FileStore, error) {
		path, err := opts.statePath()
		if err != nil {
			return nil, nil, err
		}
		k := key
		if k == "" {
			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return nil, nil, err
			}
			k = cfg.Grid.OrderKey
		}
		store := orderstore.NewFileStore(path)
		return orderstore.NewPersister(store, k, contextLogger(cmd)), store, nil
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved column order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, err := persister(cmd)
			if err != nil {
				return err
			}
			entries := p.LoadOrder()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "no saved column order under %q\n", p.Key)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tCOLUMN")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\n", e.ToIndex, e.ElementKey)
			}
			return tw.Flush()
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forget the saved column order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, err := persister(cmd)
			if err != nil {
				return err
			}
			if err := p.ClearOrder(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "column order %q reset\n", p.Key)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "keys",
		Short: "List the keys in the state file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := persister(cmd)
			if err != nil {
				return err
			}
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	cmd.AddCommand(show, reset, list)
	return cmd
}
