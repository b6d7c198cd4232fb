package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/mirror"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/store"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidSession   = errors.New("session id is required")
	ErrStateUnavailable = errors.New("session state unavailable")
)

const (
	DefaultIdleTTL       = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

type TokenParser interface {
	ParseToken(token string) (*domain.User, error)
}

// Session is the live state of one browser session.
type Session struct {
	ID      string
	Store   *store.Store
	Toaster *notify.Toaster
	Mirror  *mirror.Mirror

	lastSeen atomic.Int64
	closed   atomic.Bool
}

// SignIn sets the user and persists the token so a reload stays signed in.
func (s *Session) SignIn(ctx context.Context, user domain.User, token string) error {
	s.Store.SetUser(&user)
	return s.Mirror.SaveSession(ctx, token)
}

func (s *Session) SignOut(ctx context.Context) error {
	s.Store.SetUser(nil)
	return s.Mirror.ClearSession(ctx)
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// close marks an evicted session. Its mirror stays attached so a handler
// still holding it keeps writing through to storage.
func (s *Session) close() {
	s.closed.Store(true)
	s.Toaster.Close()
}

type Config struct {
	ToastTTL      time.Duration
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Registry keeps one Session per session ID in memory, loading it from the
// state repository on first use. Evicted sessions keep their persisted state.
type Registry struct {
	repo   repository.StateRepository
	tokens TokenParser
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	sfg      singleflight.Group
}

func NewRegistry(repo repository.StateRepository, tokens TokenParser, cfg Config, logger *slog.Logger) *Registry {
	if cfg.ToastTTL <= 0 {
		cfg.ToastTTL = notify.DefaultTTL
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		repo:     repo,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger.With("component", "session"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session, rehydrating it on first access. Concurrent
// first accesses share one load. A session whose state cannot be read is not
// kept, so the next request retries the load.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrInvalidSession
	}

	if s := r.acquire(id); s != nil {
		return s, nil
	}

	v, err, _ := r.sfg.Do(id, func() (interface{}, error) {
		if s := r.acquire(id); s != nil {
			return s, nil
		}
		s, err := r.open(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sessions[id] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// acquire returns the live session for id and marks it used. The touch
// happens under the read lock, so a sweep either sees it or has already
// removed the session.
func (r *Registry) acquire(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.sessions[id]
	if s == nil || s.closed.Load() {
		return nil
	}
	s.touch(r.now())
	return s
}

// Drop evicts a session from memory.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	if ok {
		s.closed.Store(true)
	}
	r.mu.Unlock()
	if ok {
		s.close()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close evicts every session and cancels their pending toasts.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
		s.Mirror.Detach()
	}
}

// Run evicts idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) sweep() {
	now := r.now()

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.idleSince(now) >= r.cfg.IdleTTL {
			s.closed.Store(true)
			delete(r.sessions, id)
			idle = append(idle, s)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	if len(idle) > 0 {
		r.logger.Debug("evicted idle sessions", "count", len(idle))
	}
}

func (r *Registry) lookup(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// open loads a session from storage. The mirror is attached only after every
// read succeeded; writing an empty default over unreadable state would erase it.
func (r *Registry) open(ctx context.Context, id string) (*Session, error) {
	toaster := notify.NewToaster(r.cfg.ToastTTL)
	st := store.New(toaster)
	m := mirror.New(r.repo, st, id, r.logger)
	s := &Session{ID: id, Store: st, Toaster: toaster, Mirror: m}

	if err := m.Load(ctx); err != nil {
		toaster.Close()
		r.logger.ErrorContext(ctx, "session state load error", "session", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}
	token, err := m.LoadSession(ctx)
	if err != nil {
		toaster.Close()
		r.logger.ErrorContext(ctx, "session token load error", "session", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStateUnavailable, err)
	}

	m.Attach()
	s.touch(r.now())
	r.restoreUser(ctx, s, token)
	return s, nil
}

// restoreUser signs the session back in from a persisted token. Expired or
// tampered tokens are discarded.
func (r *Registry) restoreUser(ctx context.Context, s *Session, token string) {
	if token == "" || r.tokens == nil {
		return
	}

	user, err := r.tokens.ParseToken(token)
	if err != nil {
		r.logger.InfoContext(ctx, "discarding stale session token", "session", s.ID, "error", err)
		if err := s.Mirror.ClearSession(ctx); err != nil {
			r.logger.ErrorContext(ctx, "session token clear error", "session", s.ID, "error", err)
		}
		return
	}
	s.Store.SetUser(user)
}
