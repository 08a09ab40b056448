// Package state holds the Upstash Redis REST transcript backend.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

var ErrInvalidCaller = errors.New("caller id is empty")

const (
	defaultKeyPrefix     = "hitl:session:"
	defaultKeySuffix     = ":messages"
	maxResponseSizeBytes = 2 << 20
)

var _ contractx.TranscriptRecorder = (*UpstashTranscript)(nil)

// Option customizes UpstashTranscript.
type Option func(*UpstashTranscript)

func WithKeyPrefix(prefix string) Option {
	return func(s *UpstashTranscript) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

// WithTTL refreshes the key expiry on every append. Zero keeps messages forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *UpstashTranscript) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *UpstashTranscript) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashTranscript appends chat messages to one Redis list per caller.
type UpstashTranscript struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	TTL     time.Duration `envconfig:"TTL" default:"0s"`
}

func NewUpstashTranscript(cfg UpstashRedisConfig, opts ...Option) (*UpstashTranscript, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	store := &UpstashTranscript{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultKeyPrefix,
		ttl:        cfg.TTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}

	return store, nil
}

func (s *UpstashTranscript) AppendSessionMessage(ctx context.Context, callerID string, msg contractx.ChatMessage) error {
	key, err := s.redisKey(callerID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal session message: %w", err)
	}

	if _, err := s.exec(ctx, []any{"RPUSH", key, string(payload)}); err != nil {
		return fmt.Errorf("append session message for %s: %w", callerID, err)
	}
	if s.ttl > 0 {
		if _, err := s.exec(ctx, []any{"EXPIRE", key, ttlSeconds(s.ttl)}); err != nil {
			return fmt.Errorf("refresh session ttl for %s: %w", callerID, err)
		}
	}
	return nil
}

func (s *UpstashTranscript) History(ctx context.Context, callerID string) ([]contractx.ChatMessage, error) {
	key, err := s.redisKey(callerID)
	if err != nil {
		return nil, err
	}

	resp, err := s.exec(ctx, []any{"LRANGE", key, 0, -1})
	if err != nil {
		return nil, fmt.Errorf("load session history for %s: %w", callerID, err)
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return []contractx.ChatMessage{}, nil
	}

	var encoded []string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode session history: %w", err)
	}

	out := make([]contractx.ChatMessage, 0, len(encoded))
	for i, item := range encoded {
		var msg contractx.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal session message %d: %w", i, err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *UpstashTranscript) redisKey(callerID string) (string, error) {
	id := strings.TrimSpace(callerID)
	if id == "" {
		return "", ErrInvalidCaller
	}
	return s.keyPrefix + id + defaultKeySuffix, nil
}

func (s *UpstashTranscript) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
