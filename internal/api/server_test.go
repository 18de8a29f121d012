package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parodybot/internal/domain"
	"parodybot/internal/logger"
	"parodybot/internal/worker"
)

func newTestServer(t *testing.T) (*Server, *worker.Board) {
	t.Helper()
	board := worker.NewBoard([]string{"saylor", "elonmusk"})
	return NewServer(board, 2, logger.Discard), board
}

func published(account, postID string) worker.Result {
	return worker.Result{
		Account:     account,
		Outcome:     worker.OutcomePublished,
		Post:        domain.Post{ID: postID, Author: account, Text: "original " + postID},
		Parody:      domain.Parody{Text: "parody " + postID, Payload: "parody " + postID + "\n\nlink", Attempts: 1},
		PublishedID: "pub-" + postID,
		At:          time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAccounts(t *testing.T) {
	s, board := newTestServer(t)
	board.Record(published("saylor", "1"))

	rec := get(t, s, "/api/accounts")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []worker.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "saylor", got[0].Account)
	assert.Equal(t, 1, got[0].Published)
	assert.Equal(t, worker.OutcomePublished, got[0].LastOutcome)

	rec = get(t, s, "/api/accounts/@ElonMusk")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"account":"elonmusk"`)

	rec = get(t, s, "/api/accounts/nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParodiesKeepsNewestWithinHistory(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.Notify(ctx, published("saylor", id)))
	}

	rec := get(t, s, "/api/parodies")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []ParodyView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].PostID)
	assert.Equal(t, "2", got[1].PostID)
	assert.Equal(t, "https://x.com/saylor/status/3", got[0].Permalink)

	rec = get(t, s, "/api/parodies?limit=1")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)

	rec = get(t, s, "/api/parodies?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	s, board := newTestServer(t)
	board.Record(published("saylor", "1"))
	board.Record(worker.Result{Account: "elonmusk", Outcome: worker.OutcomeFetchFailed})

	rec := get(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var got Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, Stats{Accounts: 2, Published: 1, Failures: 1}, got)
}

func TestEventsStream(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.echo)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": ping\n", line)

	require.Eventually(t, func() bool { return s.sse.Clients() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Notify(ctx, published("saylor", "7")))

	var lines []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\n" && len(lines) > 0 {
			break
		}
		if line != "\n" {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "event: parody", lines[0])
	assert.Contains(t, lines[1], `"post_id":"7"`)
}
