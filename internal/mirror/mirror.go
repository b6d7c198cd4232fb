// Package mirror keeps a session's cart and wishlist in a durable key-value
// store: it rehydrates the store once on start and rewrites the whole
// collection after every change.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/store"
)

const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeySession  = "session"
)

const writeTimeout = 5 * time.Second

type Mirror struct {
	repo      repository.StateRepository
	store     *store.Store
	sessionID string
	logger    *slog.Logger

	mu          sync.Mutex
	unsubscribe func()
	onError     func(error)
}

// New mirrors st into repo. A non-empty sessionID namespaces every key as
// "<sessionID>:<key>".
func New(repo repository.StateRepository, st *store.Store, sessionID string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		repo:      repo,
		store:     st,
		sessionID: sessionID,
		logger:    logger.With("component", "mirror", "session", sessionID),
	}
}

func (m *Mirror) Key(name string) string {
	if m.sessionID == "" {
		return name
	}
	return m.sessionID + ":" + name
}

// OnError registers a callback for failed background writes.
func (m *Mirror) OnError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// Load replaces the store contents with the persisted collections. Missing or
// malformed values load as empty collections. The returned error only reports
// storage failures; the store is still populated with whatever could be read.
func (m *Mirror) Load(ctx context.Context) error {
	var errs []error

	var cart []domain.CartItem
	if raw, err := m.read(ctx, KeyCart); err != nil {
		errs = append(errs, err)
	} else if raw != "" {
		if err := json.Unmarshal([]byte(raw), &cart); err != nil {
			m.logger.WarnContext(ctx, "malformed cart in storage, starting empty", "error", err)
			cart = nil
		}
	}

	var wishlist []domain.WishlistItem
	if raw, err := m.read(ctx, KeyWishlist); err != nil {
		errs = append(errs, err)
	} else if raw != "" {
		if err := json.Unmarshal([]byte(raw), &wishlist); err != nil {
			m.logger.WarnContext(ctx, "malformed wishlist in storage, starting empty", "error", err)
			wishlist = nil
		}
	}

	m.store.Replace(NormalizeCart(cart), NormalizeWishlist(wishlist))
	return errors.Join(errs...)
}

// Attach starts writing every store change back to storage. Calling it twice
// keeps a single subscription.
func (m *Mirror) Attach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return
	}
	m.unsubscribe = m.store.Subscribe(m.persist)
}

func (m *Mirror) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// SaveSession persists the signed-in session token.
func (m *Mirror) SaveSession(ctx context.Context, token string) error {
	if err := m.repo.Set(ctx, m.Key(KeySession), token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted token, or "" when nobody is signed in.
func (m *Mirror) LoadSession(ctx context.Context) (string, error) {
	return m.read(ctx, KeySession)
}

func (m *Mirror) ClearSession(ctx context.Context) error {
	if err := m.repo.Delete(ctx, m.Key(KeySession)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *Mirror) read(ctx context.Context, name string) (string, error) {
	raw, err := m.repo.Get(ctx, m.Key(name))
	if errors.Is(err, repository.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}

func (m *Mirror) persist(c store.Change) {
	var (
		payload []byte
		err     error
	)
	switch c.Collection {
	case store.CollectionCart:
		payload, err = json.Marshal(c.Cart)
	case store.CollectionWishlist:
		payload, err = json.Marshal(c.Wishlist)
	default:
		return
	}
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err = m.repo.Set(ctx, m.Key(string(c.Collection)), string(payload))
		cancel()
	}
	if err == nil {
		return
	}

	err = fmt.Errorf("write %s: %w", c.Collection, err)
	m.logger.Error("state write error", "error", err)

	m.mu.Lock()
	onError := m.onError
	m.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}

// NormalizeCart restores the cart invariants on data read from storage:
// quantities below 1 become 1 and repeated product IDs merge into the first
// line.
func NormalizeCart(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// NormalizeWishlist drops repeated product IDs, keeping the first.
func NormalizeWishlist(items []domain.WishlistItem) []domain.WishlistItem {
	out := make([]domain.WishlistItem, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
