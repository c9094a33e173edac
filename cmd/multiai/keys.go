package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <participant> <value>",
		Short: `Store a credential (API key, or base URL for Ollama); "" removes it`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.SetCredential(cmd.Context(), args[0], args[1])
		},
	})

	return cmd
}

func (c *cli) newParticipantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "participants",
		Short: "List the known participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := c.app.Registry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tKIND\tMODEL")
			for _, id := range reg.IDs() {
				spec, _ := reg.Spec(id)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, reg.DisplayName(id), spec.Kind, spec.Model)
			}
			return w.Flush()
		},
	}
}
