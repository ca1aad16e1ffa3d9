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
)

var (
	ErrStateNotFound = errors.New("conversation not found")
	// ErrSessionStore wraps transport and protocol failures of a remote conversation store.
	ErrSessionStore = errors.New("conversation store failure")
	// ErrSessionMismatch is returned when a stored conversation belongs to another session.
	ErrSessionMismatch = errors.New("stored conversation belongs to another session")
)

const (
	defaultKeyNamespace  = "reservation"
	defaultStoreTTL      = 24 * time.Hour
	maxResponseSizeBytes = 2 << 20
)

// Store persists conversations between turns.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Conversation, error)
	Save(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, sessionID string) error
}

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

// WithKeyNamespace changes the middle segment of "conv:<session>:<namespace>:session".
func WithKeyNamespace(ns string) StoreOption {
	return func(s *UpstashRedisStore) {
		if ns = strings.TrimSpace(ns); ns != "" {
			s.namespace = ns
		}
	}
}

// WithTTL sets how long an idle conversation survives after its last saved turn.
// Zero keeps conversations until they are reset.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *UpstashRedisStore) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashRedisStore keeps one JSON document per session in Upstash Redis, reached
// through its REST endpoint. The document holds the dialogue context and the full
// transcript; every save rewrites it and refreshes the expiry.
type UpstashRedisStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	namespace  string
	ttl        time.Duration
}

type UpstashRedisConfig struct {
	URL       string        `envconfig:"URL" split_words:"true" required:"true"`
	Token     string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	Namespace string        `envconfig:"NAMESPACE" split_words:"true" default:"reservation"`
	TTL       time.Duration `envconfig:"TTL" default:"24h"`
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("conversation store: upstash url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("conversation store: invalid upstash url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("conversation store: upstash token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultStoreTTL
	}

	store := &UpstashRedisStore{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		namespace:  defaultKeyNamespace,
		ttl:        ttl,
	}
	WithKeyNamespace(cfg.Namespace)(store)
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.ttl < 0 {
		return nil, errors.New("conversation store: ttl must be >= 0")
	}
	return store, nil
}

// Load fetches the conversation document for sessionID. A missing or expired key
// reports ErrStateNotFound so the caller can start a fresh conversation.
func (s *UpstashRedisStore) Load(ctx context.Context, sessionID string) (*Conversation, error) {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.command(ctx, "GET", key)
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", sessionID, err)
	}
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrStateNotFound
	}

	// GET returns the document as a JSON string.
	var doc string
	if err := json.Unmarshal(result, &doc); err != nil {
		return nil, fmt.Errorf("load conversation %s: result is not a string: %w", sessionID, err)
	}
	var conv Conversation
	if err := json.Unmarshal([]byte(doc), &conv); err != nil {
		return nil, fmt.Errorf("load conversation %s: decode document: %w", sessionID, err)
	}
	if err := conv.Validate(); err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", sessionID, err)
	}
	if conv.SessionID != strings.TrimSpace(sessionID) {
		return nil, fmt.Errorf("%w: key %s holds %s", ErrSessionMismatch, sessionID, conv.SessionID)
	}
	return &conv, nil
}

// Save writes the whole conversation and restarts its expiry clock.
func (s *UpstashRedisStore) Save(ctx context.Context, conv *Conversation) error {
	if conv == nil {
		return ErrNilConversation
	}
	if strings.TrimSpace(conv.SessionID) == "" {
		return ErrInvalidSession
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = time.Now().UTC()
	} else {
		conv.UpdatedAt = conv.UpdatedAt.UTC()
	}

	key, err := s.redisKey(conv.SessionID)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("save conversation %s: encode document: %w", conv.SessionID, err)
	}

	args := []any{"SET", key, string(doc)}
	if s.ttl > 0 {
		args = append(args, "EX", ttlSeconds(s.ttl))
	}
	if _, err := s.command(ctx, args...); err != nil {
		return fmt.Errorf("save conversation %s: %w", conv.SessionID, err)
	}
	return nil
}

// Delete drops the conversation; deleting a missing session is not an error.
func (s *UpstashRedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}
	if _, err := s.command(ctx, "DEL", key); err != nil {
		return fmt.Errorf("delete conversation %s: %w", sessionID, err)
	}
	return nil
}

func (s *UpstashRedisStore) redisKey(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrInvalidSession
	}
	ns := strings.TrimSpace(s.namespace)
	if ns == "" {
		ns = defaultKeyNamespace
	}
	return "conv:" + sessionID + ":" + ns + ":session", nil
}

// command sends one Redis command as a JSON array and returns the raw "result" field.
func (s *UpstashRedisStore) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %v: %v", ErrSessionStore, args[0], err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSessionStore, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrSessionStore, args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSessionStore, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %v status=%d body=%s", ErrSessionStore, args[0], resp.StatusCode, raw)
	}

	var parsed struct {
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSessionStore, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %v: %s", ErrSessionStore, args[0], parsed.Error)
	}
	return bytes.TrimSpace(parsed.Result), nil
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
