package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parodybot/internal/config"
	"parodybot/internal/domain"
	"parodybot/internal/logger"
	"parodybot/internal/storage"
	"parodybot/internal/worker"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, driver string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	store := filepath.Join(dir, "processed.db")
	path := filepath.Join(dir, "config.yaml")
	yaml := "accounts: [saylor]\n" +
		"generator: {api_keys: [k]}\n" +
		"publisher: {x: {access_token: at}}\n" +
		"store: {driver: " + driver + ", path: " + store + "}\n" +
		"log: {file: " + filepath.Join(dir, "log.txt") + "}\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path, store
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "parodybot dev (none)\n", out)
}

func TestSeen(t *testing.T) {
	path, store := writeConfig(t, "sqlite")

	set, err := storage.OpenSQLite(context.Background(), store)
	require.NoError(t, err)
	require.NoError(t, set.Add(context.Background(), domain.Record{
		Account: "saylor", PostID: "100", PublishedID: "900", Text: "parody", PublishedAt: time.Now(),
	}))
	require.NoError(t, set.Close())

	out, err := execute(t, "seen", "--config", path, "@saylor", "100")
	require.NoError(t, err)
	assert.Equal(t, "@saylor 100: processed\n", out)

	out, err = execute(t, "seen", "--config", path, "saylor", "101")
	require.NoError(t, err)
	assert.Equal(t, "@saylor 101: not processed\n", out)

	out, err = execute(t, "history", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "100 -> 900  parody")
}

func TestHistoryUnsupportedStore(t *testing.T) {
	path, _ := writeConfig(t, "file")

	_, err := execute(t, "history", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keeps no history")
}

func TestSeenNeedsTwoArgs(t *testing.T) {
	_, err := execute(t, "seen", "saylor")
	assert.Error(t, err)
}

func TestBuildApp(t *testing.T) {
	path, _ := writeConfig(t, "json")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	board := worker.NewBoard(cfg.Accounts)
	a, err := buildApp(context.Background(), cfg, logger.Discard, appOptions{dryRun: true, board: board})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Same(t, board, a.board)
	assert.NotNil(t, a.driver)
	assert.Nil(t, a.events)
}

func TestPrintResults(t *testing.T) {
	var out bytes.Buffer
	printResults(&out, []worker.Result{
		{Account: "saylor", Outcome: worker.OutcomeDryRun, Post: domain.Post{ID: "1"}, Parody: domain.Parody{Payload: "lol\n\nhttps://x.com/saylor/status/1"}},
		{Account: "elonmusk", Outcome: worker.OutcomeFetchFailed, Err: errors.New("nitter down")},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "dry_run")
	assert.Contains(t, lines[0], "post=1")
	assert.Equal(t, "    | lol", lines[1])
	assert.Contains(t, lines[4], "error=nitter down")
	assert.Equal(t, 1, countFailed([]worker.Result{{Outcome: worker.OutcomePublishFailed}, {Outcome: worker.OutcomeSeen}}))
}
