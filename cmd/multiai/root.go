package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	multiai "github.com/aibymlorg/managing-multiagent-intelligence"
	"github.com/aibymlorg/managing-multiagent-intelligence/config"
	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/logging"
	"github.com/aibymlorg/managing-multiagent-intelligence/orchestrator"
	"github.com/aibymlorg/managing-multiagent-intelligence/participant"
	"github.com/aibymlorg/managing-multiagent-intelligence/storage/sqlite"
)

// cli holds the state shared by all sub-commands of one invocation.
type cli struct {
	envFile string
	dbPath  string

	cfg    *config.Config
	logger logging.Logger
	store  *sqlite.Store
	app    *multiai.App
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:                "multiai",
		Short:              "Converse with several AI providers at once",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Optional .env file loaded before the environment")
	rootCmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite database path (overrides MULTIAI_DB_PATH)")

	rootCmd.AddCommand(c.newChatCmd())
	rootCmd.AddCommand(c.newDialogueCmd())
	rootCmd.AddCommand(c.newConversationsCmd())
	rootCmd.AddCommand(c.newMemoryCmd())
	rootCmd.AddCommand(c.newKeysCmd())
	rootCmd.AddCommand(c.newParticipantsCmd())

	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	c.cfg = cfg
	c.logger = cfg.Logger()

	specs := participant.DefaultSpecs()
	if cfg.ParticipantsFile != "" {
		extra, err := participant.LoadFile(cfg.ParticipantsFile)
		if err != nil {
			return err
		}
		specs = append(specs, extra...)
	}
	reg, err := participant.New(func(o *participant.Options) {
		o.Specs = specs
		o.Logger = c.logger
	})
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cmd.Context(), cfg.DBPath, func(o *sqlite.Options) { o.Logger = c.logger })
	if err != nil {
		return err
	}
	c.store = store

	app, err := multiai.New(cmd.Context(), func(o *multiai.Options) {
		o.Store = store
		o.Registry = reg
		o.Credentials = cfg.Credentials()
		o.Orchestrator = []func(o *orchestrator.Options){cfg.OrchestratorOptions()}
		o.MaxAutoRounds = cfg.MaxAutoRounds
		o.AutoProgressRounds = cfg.AutoProgressRounds
		o.Logger = c.logger
	})
	if err != nil {
		_ = store.Close()
		return err
	}
	c.app = app

	return nil
}

func (c *cli) teardown(_ *cobra.Command, _ []string) error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// conversationFor returns the conversation named by id, or creates one for
// the comma-separated participant list.
func (c *cli) conversationFor(id, participants string) (*core.Conversation, error) {
	if id != "" {
		return c.app.Conversation(id)
	}
	ids := splitList(participants)
	if len(ids) == 0 {
		return nil, fmt.Errorf("either --conversation or --participants is required")
	}
	return c.app.CreateConversation(conversationType(len(ids)), ids)
}

func conversationType(n int) core.ConversationType {
	switch {
	case n == 1:
		return core.ConversationSingle
	case n == 2:
		return core.ConversationBilateral
	default:
		return core.ConversationMultilateral
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// speaker is the label printed in front of a message.
func (c *cli) speaker(m core.Message) string {
	switch m.Sender {
	case "", core.SenderUser:
		return "You"
	case core.SenderModerator:
		return "Moderator"
	case core.SenderSystem:
		return "System"
	}
	return c.app.Registry().DisplayName(m.Sender)
}

func (c *cli) printMessages(cmd *cobra.Command, msgs []core.Message) {
	out := cmd.OutOrStdout()
	for _, m := range msgs {
		fmt.Fprintf(out, "%s: %s\n\n", c.speaker(m), m.Content)
	}
}
