// Package web serves snapshots and change events over HTTP. Consumers poll
// GET /changes/:time with their last seen timestamp and re-read whatever
// routes come back.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/imacodr/rojo/internal/logging"
	"github.com/imacodr/rojo/internal/session"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var webLogger = logging.Named("web")

// Server exposes one session over HTTP.
type Server struct {
	session *session.Session
	port    int
	http    *http.Server
}

// NewServer builds a server for s listening on port.
func NewServer(s *session.Session, port int) *Server {
	return &Server{session: s, port: port}
}

// Handler builds the route table. It is split from Run so tests can drive
// the handlers through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/", s.handleInfo)
	router.GET("/read_all", s.handleReadAll)
	router.GET("/read/*route", s.handleRead)
	router.GET("/changes/:time", s.handleChanges)
	router.POST("/write", s.handleUnsupported("write"))
	router.POST("/delete", s.handleUnsupported("delete"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Consumers are editor plugins served from another origin.
		w.Header().Add("Access-Control-Allow-Origin", "*")
		router.ServeHTTP(w, r)
	})
}

// Run listens and serves until Stop is called. It blocks.
func (s *Server) Run() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return errors.Wrapf(err, "listening on port %d", s.port)
	}

	s.http = &http.Server{Handler: s.Handler()}
	webLogger.Info("listening", zap.Int("port", s.port))

	if err := s.http.Serve(listener); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "serving")
	}
	return nil
}

// Stop shuts the server down, letting in-flight requests finish until ctx
// expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
