package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aibymlorg/managing-multiagent-intelligence/conversation"
)

func (c *cli) newConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Manage stored conversations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tTYPE\tPARTICIPANTS\tMESSAGES\tCREATED")
			for _, conv := range c.app.Conversations() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					conv.ID, conv.GetTitle(), conv.Type, strings.Join(conv.Participants, ","),
					conv.Len(), conv.CreatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := c.app.Conversation(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), conversation.Text(conv))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.RenameConversation(args[0], strings.Join(args[1:], " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.DeleteConversation(args[0])
		},
	})

	var out string
	exportCmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a conversation as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := c.app.ExportConversation(args[0])
			if err != nil {
				return err
			}
			return writeExport(cmd, out, name, data)
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", `Output file ("-" for stdout; default derived from the title)`)
	cmd.AddCommand(exportCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import an exported conversation under a new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			conv, err := c.app.ImportConversation(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported conversation %s (%s)\n", conv.ID, conv.GetTitle())
			return nil
		},
	})

	return cmd
}

// writeExport writes data to out, to stdout for "-", or to name when out is empty.
func writeExport(cmd *cobra.Command, out, name string, data []byte) error {
	if out == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
	return nil
}
