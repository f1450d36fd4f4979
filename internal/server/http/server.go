// Package httpserver hosts the dashboard API: a gin engine carrying the
// request-id, CORS and logging middleware, the /api pipeline, the /api/ws
// feed socket, and static assets for the bundled frontend.
package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coder/websocket"
	gin "github.com/gin-gonic/gin"

	"github.com/gnmyt/MCDash-sub000/internal/events"
	"github.com/gnmyt/MCDash-sub000/internal/web"
	"github.com/gnmyt/MCDash-sub000/internal/web/feed"
)

// Config is the subset of server settings the HTTP layer cares about.
type Config struct {
	Addr         string
	StaticDir    string // SPA bundle, optional
	AllowOrigins string // comma-separated CORS allowlist, "*" or "" for any
}

type Server struct {
	cfg        Config
	pipeline   *web.Pipeline
	dispatcher *events.Dispatcher
	feeds      *feed.Catalogue

	httpSrv *http.Server
}

func New(cfg Config, p *web.Pipeline, d *events.Dispatcher, feeds *feed.Catalogue) *Server {
	return &Server{cfg: cfg, pipeline: p, dispatcher: d, feeds: feeds}
}

func (s *Server) ListenAndServe() error {
	slog.Info("http api listening", "addr", s.cfg.Addr)
	s.httpSrv = &http.Server{Addr: s.cfg.Addr, Handler: s.engine()}
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

// engine builds the gin engine. API dispatch happens in NoRoute because the
// pipeline owns its own route table; gin only carries middleware, the
// websocket upgrade and static assets.
func (s *Server) engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.ginReqID(), s.ginCORS(), s.ginLogger(), gin.Recovery())

	r.GET("/api/ws", s.handleWS)

	staticDir := s.cfg.StaticDir
	if staticDir != "" {
		if st, err := os.Stat(staticDir); err != nil || !st.IsDir() {
			staticDir = ""
		}
	}
	if staticDir != "" {
		r.Static("/assets", filepath.Join(staticDir, "assets"))
		index := filepath.Join(staticDir, "index.html")
		r.GET("/", func(c *gin.Context) { c.File(index) })
	}

	r.NoRoute(func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			s.pipeline.ServeHTTP(c.Writer, c.Request)
			return
		}
		// Unknown non-API paths fall back to the SPA entry point.
		if staticDir != "" {
			c.File(filepath.Join(staticDir, "index.html"))
			return
		}
		c.Status(http.StatusNotFound)
	})
	return r
}

// handleWS upgrades the connection and runs the feed channel. The token
// travels as a query parameter because browsers cannot set headers on
// websocket dials.
func (s *Server) handleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	_, ok, err := s.pipeline.Sessions.Validate(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return
	}
	feed.NewChannel(conn, s.dispatcher, s.feeds).Serve(c.Request.Context())
}

func (s *Server) ginCORS() gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range strings.Split(s.cfg.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			allowed[o] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		w := c.Writer
		origin := c.Request.Header.Get("Origin")
		if len(allowed) == 0 {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ginReqID injects/propagates an X-Request-ID for traceability.
func (s *Server) ginReqID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.Request.Header.Get("X-Request-ID"))
		if rid == "" {
			b := make([]byte, 16)
			if _, err := rand.Read(b); err == nil {
				rid = hex.EncodeToString(b)
			} else {
				rid = fmt.Sprintf("%d", time.Now().UnixNano())
			}
		}
		c.Set("reqid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func (s *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		st := c.Writer.Status()
		lvl := slog.LevelInfo
		if st >= 500 {
			lvl = slog.LevelError
		} else if st >= 400 {
			lvl = slog.LevelWarn
		}
		rid, _ := c.Get("reqid")
		slog.Log(c, lvl, "http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", st,
			"bytes", c.Writer.Size(),
			"remote", c.ClientIP(),
			"reqid", rid,
			"dur_ms", time.Since(start).Milliseconds(),
		)
	}
}
