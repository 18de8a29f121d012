package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"parodybot/internal/config"
	"parodybot/internal/storage"
)

var seenCmd = &cobra.Command{
	Use:   "seen <handle> <post-id>",
	Short: "Report whether a post has already been processed",
	Args:  cobra.ExactArgs(2),
	RunE:  seenAction,
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently published parodies (sqlite and postgres stores)",
	RunE:  historyAction,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show")
	rootCmd.AddCommand(seenCmd, historyCmd)
}

func seenAction(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	set, err := storage.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer func() { _ = set.Close() }()

	account := strings.TrimPrefix(args[0], "@")
	seen, err := set.Contains(cmd.Context(), account, args[1])
	if err != nil {
		return err
	}

	if seen {
		fmt.Fprintf(cmd.OutOrStdout(), "@%s %s: processed\n", account, args[1])
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "@%s %s: not processed\n", account, args[1])
	}
	return nil
}

func historyAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	set, err := storage.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer func() { _ = set.Close() }()

	h, ok := set.(storage.History)
	if !ok {
		return fmt.Errorf("the %s store keeps no history", cfg.Store.Driver)
	}

	records, err := h.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range records {
		fmt.Fprintf(out, "%s  @%-16s %s -> %s  %s\n",
			r.PublishedAt.Local().Format("2006-01-02 15:04"), r.Account, r.PostID, r.PublishedID, r.Text)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "no parodies published yet")
	}
	return nil
}
