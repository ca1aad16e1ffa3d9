package arbiter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	nodex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/nodes/arbiter"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

const (
	DefaultHistoryWindow   = 10
	DefaultExtractLookback = 6
)

type Config struct {
	HistoryWindow      int
	ExtractLookback    int
	AutoCancelOnLookup bool
}

// Arbiter runs one dialogue turn at a time per session.
type Arbiter struct {
	store     statex.Store
	completer contractx.Completer
	tools     nodex.Executor
	notifier  contractx.Notifier
	cfg       Config

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
	locks       *keyedMutex

	now func() time.Time
}

func New(
	store statex.Store,
	completer contractx.Completer,
	tools nodex.Executor,
	notifier contractx.Notifier,
	cfg Config,
) (*Arbiter, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if tools == nil {
		return nil, errors.New("action executor is required")
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}
	if cfg.ExtractLookback <= 0 {
		cfg.ExtractLookback = DefaultExtractLookback
	}

	a := &Arbiter{
		store:     store,
		completer: completer,
		tools:     tools,
		notifier:  notifier,
		cfg:       cfg,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}

	graphRunner, err := a.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// HandleMessage loads the session, runs one turn and saves it. It only fails on
// invalid input or a session store error.
func (a *Arbiter) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	unlock := a.locks.Lock(sessionID)
	defer unlock()

	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	log.Debug().Str("session_id", sessionID).Str("phase", string(out.Phase)).Msg("arbiter: turn handled")
	return out.Reply, nil
}

// Process runs one turn over a caller-owned conversation. It never fails: any
// internal error becomes an apology.
func (a *Arbiter) Process(ctx context.Context, conv *statex.Conversation, text string) string {
	if conv == nil {
		log.Error().Err(statex.ErrNilConversation).Msg("arbiter: process")
		return nodex.MsgUpstreamFailure
	}
	unlock := a.locks.Lock(conv.SessionID)
	defer unlock()

	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID:    conv.SessionID,
		Text:         text,
		Conversation: conv,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			return nodex.MsgDefaultGreeting
		}
		log.Error().Err(err).Str("session_id", conv.SessionID).Msg("arbiter: process")
		return nodex.MsgUpstreamFailure
	}
	return out.Reply
}

func (a *Arbiter) Reset(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrInvalidSession
	}
	unlock := a.locks.Lock(sessionID)
	defer unlock()
	return a.store.Delete(ctx, sessionID)
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*refMutex{}}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
