package conversation

import (
	"strings"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// Text renders the history as "SENDER: content" blocks separated by a blank
// line. The role is used when a message has no sender.
func Text(conv *core.Conversation) string {
	msgs := conv.GetMessages()
	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		who := m.Sender
		if who == "" {
			who = string(m.Role)
		}
		blocks = append(blocks, strings.ToUpper(who)+": "+m.Content)
	}
	return strings.Join(blocks, "\n\n")
}
