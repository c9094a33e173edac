package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

func (c *cli) newChatCmd() *cobra.Command {
	var conversationID, participants string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message to every participant of a conversation",
		Long: "Send a message and print each participant's reply. Without a message argument\n" +
			"lines are read from stdin until EOF, one round per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := c.conversationFor(conversationID, participants)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation %s (%s)\n\n", conv.ID, conv.GetTitle())

			if len(args) > 0 {
				return c.chatRound(cmd, conv, strings.Join(args, " "))
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if err := c.chatRound(cmd, conv, line); err != nil {
					var provider *core.ProviderError
					var cfgErr *core.ConfigurationError
					if errors.As(err, &provider) || errors.As(err, &cfgErr) {
						// The failure is already recorded in the transcript.
						continue
					}
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Existing conversation id")
	cmd.Flags().StringVar(&participants, "participants", "", "Comma-separated participant ids for a new conversation")

	return cmd
}

func (c *cli) chatRound(cmd *cobra.Command, conv *core.Conversation, text string) error {
	results, err := c.app.SendMessage(cmd.Context(), conv.ID, text)
	for i, res := range results {
		if i > 0 {
			c.printMessages(cmd, []core.Message{res.UserMessage})
		}
		c.printMessages(cmd, res.Responses)
	}
	return err
}
