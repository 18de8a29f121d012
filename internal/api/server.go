// Package api serves the bot's status: per-account state, the recently
// published parodies and a live event stream.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"parodybot/internal/logger"
	"parodybot/internal/worker"
)

const (
	defaultHistory = 50
	maxLimit       = 200
)

// StatusSource exposes the driver's per-account state.
type StatusSource interface {
	Snapshot() []worker.Status
	Totals() (published, failures int)
}

type ParodyView struct {
	Account     string    `json:"account"`
	PostID      string    `json:"post_id"`
	Permalink   string    `json:"permalink"`
	Original    string    `json:"original"`
	Text        string    `json:"text"`
	Payload     string    `json:"payload"`
	PublishedID string    `json:"published_id"`
	Attempts    int       `json:"attempts"`
	PublishedAt time.Time `json:"published_at"`
}

type Stats struct {
	Accounts  int `json:"accounts"`
	Published int `json:"published"`
	Failures  int `json:"failures"`
	Listeners int `json:"listeners"`
}

type Server struct {
	echo   *echo.Echo
	status StatusSource
	sse    *SSEBroker
	log    logger.Logger

	mu      sync.RWMutex
	recent  []ParodyView
	history int
}

func NewServer(status StatusSource, history int, log logger.Logger) *Server {
	if history <= 0 {
		history = defaultHistory
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Debugf("[HTTP] %s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))

	s := &Server{
		echo:    e,
		status:  status,
		sse:     NewSSEBroker(),
		log:     log,
		history: history,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)
	s.echo.GET("/api/stats", s.stats)
	s.echo.GET("/api/accounts", s.getAccounts)
	s.echo.GET("/api/accounts/:account", s.getAccount)
	s.echo.GET("/api/parodies", s.getParodies)
	s.echo.GET("/api/events", s.events)
}

func (s *Server) Start(addr string) error {
	s.log.Infof("[HTTP] status server listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Notify records a published parody and pushes it to stream listeners.
func (s *Server) Notify(_ context.Context, res worker.Result) error {
	view := ParodyView{
		Account:     res.Account,
		PostID:      res.Post.ID,
		Permalink:   res.Post.Permalink(),
		Original:    res.Post.Text,
		Text:        res.Parody.Text,
		Payload:     res.Parody.Payload,
		PublishedID: res.PublishedID,
		Attempts:    res.Parody.Attempts,
		PublishedAt: res.At,
	}

	s.mu.Lock()
	s.recent = append([]ParodyView{view}, s.recent...)
	if len(s.recent) > s.history {
		s.recent = s.recent[:s.history]
	}
	s.mu.Unlock()

	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	s.sse.Broadcast(string(data))
	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) stats(c echo.Context) error {
	published, failures := s.status.Totals()
	return c.JSON(http.StatusOK, Stats{
		Accounts:  len(s.status.Snapshot()),
		Published: published,
		Failures:  failures,
		Listeners: s.sse.Clients(),
	})
}

func (s *Server) getAccounts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.status.Snapshot())
}

func (s *Server) getAccount(c echo.Context) error {
	account := strings.TrimPrefix(c.Param("account"), "@")
	for _, st := range s.status.Snapshot() {
		if strings.EqualFold(st.Account, account) {
			return c.JSON(http.StatusOK, st)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
}

func (s *Server) getParodies(c echo.Context) error {
	limit := s.history
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and " + strconv.Itoa(maxLimit)})
		}
		limit = n
	}

	s.mu.RLock()
	if limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := append([]ParodyView{}, s.recent[:limit]...)
	s.mu.RUnlock()

	return c.JSON(http.StatusOK, out)
}

func (s *Server) events(c echo.Context) error {
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")

	ch := s.sse.Subscribe()
	defer s.sse.Unsubscribe(ch)

	fmt.Fprintf(c.Response(), ": ping\n\n")
	c.Response().Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case msg := <-ch:
			fmt.Fprintf(c.Response(), "event: parody\n")
			for _, line := range strings.Split(msg, "\n") {
				fmt.Fprintf(c.Response(), "data: %s\n", line)
			}
			fmt.Fprintf(c.Response(), "\n")
			c.Response().Flush()
		}
	}
}
