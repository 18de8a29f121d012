package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"parodybot/internal/config"
	"parodybot/internal/worker"
)

var onceDryRun bool

var onceCmd = &cobra.Command{
	Use:   "once [handle...]",
	Short: "Run a single pass over the given accounts (default: all) without waiting",
	RunE:  onceAction,
}

func init() {
	onceCmd.Flags().BoolVar(&onceDryRun, "dry-run", false, "generate and print payloads without publishing or recording them")
	rootCmd.AddCommand(onceCmd)
}

func onceAction(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := buildApp(cmd.Context(), cfg, log, appOptions{dryRun: onceDryRun})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	accounts := make([]string, 0, len(args))
	for _, h := range args {
		if h = strings.TrimPrefix(strings.TrimSpace(h), "@"); h != "" {
			accounts = append(accounts, h)
		}
	}

	results := a.driver.RunOnce(cmd.Context(), accounts...)
	printResults(cmd.OutOrStdout(), results)

	for _, r := range results {
		if r.Outcome.Failed() {
			return fmt.Errorf("%d of %d accounts failed", countFailed(results), len(results))
		}
	}
	return nil
}

func printResults(w io.Writer, results []worker.Result) {
	for _, r := range results {
		line := fmt.Sprintf("@%-20s %-16s", r.Account, r.Outcome)
		if r.Post.ID != "" {
			line += " post=" + r.Post.ID
		}
		if r.PublishedID != "" {
			line += " published=" + r.PublishedID
		}
		if r.Err != nil {
			line += " error=" + r.Err.Error()
		}
		fmt.Fprintln(w, line)

		if r.Outcome == worker.OutcomeDryRun {
			for _, l := range strings.Split(r.Parody.Payload, "\n") {
				fmt.Fprintln(w, "    | "+l)
			}
		}
	}
}

func countFailed(results []worker.Result) int {
	n := 0
	for _, r := range results {
		if r.Outcome.Failed() {
			n++
		}
	}
	return n
}
