package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and manage per-participant memories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <participant>",
		Short: "List a participant's memories, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tCREATED\tCONTENT")
			for _, r := range c.app.Memory().Records(args[0]) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Category, r.CreatedAt.Local().Format(time.DateTime), truncate(r.Content, 60))
			}
			return w.Flush()
		},
	})

	var limit int
	searchCmd := &cobra.Command{
		Use:   "search <participant> <query>",
		Short: "Search a participant's memories by keyword relevance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.app.Memory().Search(args[0], args[1], limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tID\tCONTENT")
			for _, r := range results {
				fmt.Fprintf(w, "%.2f\t%s\t%s\n", r.RelevanceScore, r.ID, truncate(r.Content, 60))
			}
			return w.Flush()
		},
	}
	searchCmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (0 uses the configured maximum)")
	cmd.AddCommand(searchCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <participant> <record-id>",
		Short: "Delete one memory record",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.Memory().Delete(args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <participant>",
		Short: "Delete all memories of a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.Memory().Clear(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete every participant's memories",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.app.ResetMemories()
		},
	})

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all memories as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := c.app.ExportMemories()
			if err != nil {
				return err
			}
			name := fmt.Sprintf("ai-memories-%s.json", time.Now().Format(time.DateOnly))
			return writeExport(cmd, out, name, data)
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", `Output file ("-" for stdout)`)
	cmd.AddCommand(exportCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Merge exported memories ahead of the existing ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			n, err := c.app.ImportMemories(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported memories for %d AIs\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show memory counts and approximate storage per participant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.app.MemoryConfig()
			fmt.Fprintf(cmd.OutOrStdout(), "Memory enabled: %t (auto-store %t, max %d, sensitivity %.2f, max age %d days)\n",
				cfg.Enabled, cfg.AutoStore, cfg.MaxRelevantMemories, cfg.SearchSensitivity, cfg.MaxMemoryAgeDays)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PARTICIPANT\tMEMORIES\tSTORAGE (KB)")
			stats := c.app.MemoryStats()
			for _, id := range c.app.Memory().Participants() {
				s := stats[id]
				fmt.Fprintf(w, "%s\t%d\t%d\n", id, s.Total, s.StorageKB)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(c.newMemoryConfigCmd())

	return cmd
}

func (c *cli) newMemoryConfigCmd() *cobra.Command {
	var enabled, autoStore bool
	var maxRelevant, maxAge int
	var sensitivity float64

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Update the memory configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.app.MemoryConfig()
			flags := cmd.Flags()
			if flags.Changed("enabled") {
				cfg.Enabled = enabled
			}
			if flags.Changed("auto-store") {
				cfg.AutoStore = autoStore
			}
			if flags.Changed("max-relevant") {
				cfg.MaxRelevantMemories = maxRelevant
			}
			if flags.Changed("sensitivity") {
				cfg.SearchSensitivity = sensitivity
			}
			if flags.Changed("max-age") {
				cfg.MaxMemoryAgeDays = maxAge
			}
			return c.app.SetMemoryConfig(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&enabled, "enabled", false, "Enable memory injection")
	cmd.Flags().BoolVar(&autoStore, "auto-store", true, "Store messages automatically")
	cmd.Flags().IntVar(&maxRelevant, "max-relevant", 5, "Maximum memories injected per participant")
	cmd.Flags().Float64Var(&sensitivity, "sensitivity", 0.3, "Minimum relevance score in [0,1]")
	cmd.Flags().IntVar(&maxAge, "max-age", 30, "Drop memories older than this many days on load (0 keeps all)")

	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
