package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

const maxBodyBytes = 1 << 20

type chatRequest struct {
	Messages []contractx.ChatMessage `json:"messages"`
	UserID   string                  `json:"user_id"`
}

type chatResponse struct {
	Status   string              `json:"status"`
	Message  string              `json:"message,omitempty"`
	Payload  any                 `json:"payload,omitempty"`
	Approval *contractx.Approval `json:"approval,omitempty"`
}

const (
	statusOK               = "OK"
	statusApprovalRequired = "APPROVAL_REQUIRED"
)

type historyResponse struct {
	UserID   string                  `json:"user_id"`
	Messages []contractx.ChatMessage `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateConversation(req.Messages); err != nil {
		writeError(w, r, err)
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID != "" {
		last := req.Messages[len(req.Messages)-1]
		if err := s.transcript.AppendSessionMessage(r.Context(), userID, last); err != nil {
			writeError(w, r, fmt.Errorf("record session message: %w", err))
			return
		}
	}

	out, err := s.interpreter.Interpret(r.Context(), userID, req.Messages)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if out.Kind == contractx.InterpretationApprovalRequired {
		hlog.FromRequest(r).Info().
			Str("user_id", userID).
			Str("action", string(out.Pending.Kind)).
			Msg("action awaiting approval")
		writeJSON(w, http.StatusOK, chatResponse{
			Status:   statusApprovalRequired,
			Payload:  out.Pending.Payload(),
			Approval: out.Approval,
		})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Status: statusOK, Message: out.Text})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req contractx.ExecuteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := s.executor.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeError(w, r, fmt.Errorf("%w: user_id is required", contractx.ErrValidation))
		return
	}

	messages, err := s.transcript.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []contractx.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, historyResponse{UserID: userID, Messages: messages})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody keeps numbers as json.Number so quantities like 3 and "3" parse
// the same way downstream.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", contractx.ErrValidation, err)
	}
	return nil
}

func validateConversation(messages []contractx.ChatMessage) error {
	if len(messages) == 0 {
		return fmt.Errorf("%w: messages must not be empty", contractx.ErrValidation)
	}
	for i, m := range messages {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: messages[%d].role must be user or assistant", contractx.ErrValidation, i)
		}
	}
	return nil
}
