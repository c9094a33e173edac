package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) newDialogueCmd() *cobra.Command {
	var conversationID, participants string
	var rounds int

	cmd := &cobra.Command{
		Use:   "dialogue <topic>",
		Short: "Let the participants discuss a topic among themselves",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := c.conversationFor(conversationID, participants)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation %s (%s)\n\n", conv.ID, conv.GetTitle())

			msgs, err := c.app.StartDialogue(cmd.Context(), conv.ID, strings.Join(args, " "), rounds)
			c.printMessages(cmd, msgs)
			return err
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Existing conversation id")
	cmd.Flags().StringVar(&participants, "participants", "", "Comma-separated participant ids (at least two) for a new conversation")
	cmd.Flags().IntVar(&rounds, "rounds", 5, "Number of dialogue rounds")

	return cmd
}
