package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parodybot/internal/domain"
)

func TestTelegram_PublishToAllChats(t *testing.T) {
	var chats []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottok/sendMessage", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		chats = append(chats, fmt.Sprint(body["chat_id"]))
		assert.Equal(t, "parody", body["text"])

		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d}}`, 10+len(chats))
	}))
	defer srv.Close()

	tg := NewTelegram("tok", []string{"@a", "@b"}, 5*time.Second)
	tg.baseURL = srv.URL

	id, err := tg.Publish(context.Background(), Post{Text: "parody"})
	require.NoError(t, err)
	assert.Equal(t, "11", id)
	assert.Equal(t, []string{"@a", "@b"}, chats)
}

func TestTelegram_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Too Many Requests: retry after 3","parameters":{"retry_after":3}}`))
	}))
	defer srv.Close()

	tg := NewTelegram("tok", []string{"@a"}, 5*time.Second)
	tg.baseURL = srv.URL

	_, err := tg.Publish(context.Background(), Post{Text: "parody"})
	require.Error(t, err)
	assert.True(t, domain.IsRateLimited(err))
}

func TestTelegram_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegram("tok", []string{"@missing"}, 5*time.Second)
	tg.baseURL = srv.URL

	_, err := tg.Publish(context.Background(), Post{Text: "parody"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
