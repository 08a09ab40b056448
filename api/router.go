// Package api exposes the chat, execute and transcript endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	interpreter contractx.Interpreter
	executor    contractx.Executor
	transcript  contractx.TranscriptRecorder
	db          pinger
	logger      zerolog.Logger
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithHealthCheck makes /healthz ping the database.
func WithHealthCheck(db pinger) Option {
	return func(s *Server) {
		s.db = db
	}
}

func NewServer(
	interpreter contractx.Interpreter,
	executor contractx.Executor,
	transcript contractx.TranscriptRecorder,
	opts ...Option,
) (*Server, error) {
	if interpreter == nil {
		return nil, errors.New("interpreter is required")
	}
	if executor == nil {
		return nil, errors.New("executor is required")
	}
	if transcript == nil {
		return nil, errors.New("transcript recorder is required")
	}

	s := &Server{
		interpreter: interpreter,
		executor:    executor,
		transcript:  transcript,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("GET /sessions/{user_id}/messages", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return Chain(
		ContextLogger(s.logger),
		RequestID(),
		AccessLog(),
		Recovery(),
	)(mux)
}
