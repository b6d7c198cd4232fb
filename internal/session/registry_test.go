package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepository counts reads and can slow them down.
type countingRepository struct {
	*repository.MemoryRepository
	gets  atomic.Int32
	delay time.Duration
}

func (r *countingRepository) Get(ctx context.Context, key string) (string, error) {
	r.gets.Add(1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return r.MemoryRepository.Get(ctx, key)
}

// flakyRepository fails every read while down is set.
type flakyRepository struct {
	*repository.MemoryRepository
	down atomic.Bool
}

func (r *flakyRepository) Get(ctx context.Context, key string) (string, error) {
	if r.down.Load() {
		return "", errors.New("dial tcp 127.0.0.1:6379: connection refused")
	}
	return r.MemoryRepository.Get(ctx, key)
}

type mockTokens struct {
	m     sync.RWMutex
	users map[string]domain.User
}

func (t *mockTokens) ParseToken(token string) (*domain.User, error) {
	t.m.RLock()
	defer t.m.RUnlock()
	u, ok := t.users[token]
	if !ok {
		return nil, errors.New("token is expired")
	}
	return &u, nil
}

func newRegistry(repo repository.StateRepository, tokens TokenParser) *Registry {
	return NewRegistry(repo, tokens, Config{ToastTTL: time.Minute}, logger.Nop())
}

func TestGet_EmptyID(t *testing.T) {
	r := newRegistry(repository.NewMemoryRepository(), nil)
	_, err := r.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestGet_SameSessionReturned(t *testing.T) {
	r := newRegistry(repository.NewMemoryRepository(), nil)
	defer r.Close()
	ctx := context.Background()

	a, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	b, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	c, err := r.Get(ctx, "s2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestGet_ConcurrentFirstAccessLoadsOnce(t *testing.T) {
	repo := &countingRepository{MemoryRepository: repository.NewMemoryRepository(), delay: 20 * time.Millisecond}
	r := newRegistry(repo, nil)
	defer r.Close()

	var wg sync.WaitGroup
	sessions := make([]*Session, 20)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.Get(context.Background(), "s1")
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range sessions {
		assert.Same(t, sessions[0], s)
	}
	// cart, wishlist and session token
	assert.Equal(t, int32(3), repo.gets.Load())
}

func TestGet_RehydratesAndMirrors(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	r1 := newRegistry(repo, nil)
	s, err := r1.Get(ctx, "s1")
	require.NoError(t, err)
	s.Store.AddToCart(domain.Product{ID: 1, Title: "Tee", Price: 10})
	s.Store.AddToWishlist(domain.Product{ID: 2, Title: "Cap", Price: 5})
	r1.Close()

	r2 := newRegistry(repo, nil)
	defer r2.Close()
	restored, err := r2.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, restored.Store.Cart(), 1)
	assert.Equal(t, "Tee", restored.Store.Cart()[0].Title)
	require.Len(t, restored.Store.Wishlist(), 1)

	other, err := r2.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, other.Store.Cart())
}

func TestGet_StoreNotifiesToaster(t *testing.T) {
	r := newRegistry(repository.NewMemoryRepository(), nil)
	defer r.Close()

	s, err := r.Get(context.Background(), "s1")
	require.NoError(t, err)
	s.Store.AddToCart(domain.Product{ID: 1, Title: "Tee"})

	active := s.Toaster.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Tee added to cart", active[0].Message)
}

func TestSignIn_RestoredAfterReload(t *testing.T) {
	repo := repository.NewMemoryRepository()
	tokens := &mockTokens{users: map[string]domain.User{"tok": {ID: "7", Name: "Ann", Role: domain.RoleUser}}}
	ctx := context.Background()

	r1 := newRegistry(repo, tokens)
	s, err := r1.Get(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, s.SignIn(ctx, domain.User{ID: "7", Name: "Ann"}, "tok"))
	assert.Equal(t, "7", s.Store.User().ID)
	r1.Close()

	r2 := newRegistry(repo, tokens)
	defer r2.Close()
	restored, err := r2.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, restored.Store.User())
	assert.Equal(t, "Ann", restored.Store.User().Name)
}

func TestSignOut_ClearsToken(t *testing.T) {
	repo := repository.NewMemoryRepository()
	tokens := &mockTokens{users: map[string]domain.User{"tok": {ID: "7"}}}
	ctx := context.Background()

	r := newRegistry(repo, tokens)
	defer r.Close()
	s, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, s.SignIn(ctx, domain.User{ID: "7"}, "tok"))
	require.NoError(t, s.SignOut(ctx))

	assert.Nil(t, s.Store.User())
	_, err = repo.Get(ctx, "s1:session")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestGet_StaleTokenDiscarded(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "s1:session", "expired"))

	r := newRegistry(repo, &mockTokens{})
	defer r.Close()
	s, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, s.Store.User())

	_, err = repo.Get(ctx, "s1:session")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestDrop_KeepsPersistedState(t *testing.T) {
	repo := repository.NewMemoryRepository()
	r := newRegistry(repo, nil)
	defer r.Close()
	ctx := context.Background()

	s, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	s.Store.AddToCart(domain.Product{ID: 1, Title: "Tee"})

	r.Drop("s1")
	assert.Equal(t, 0, r.Len())

	again, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	assert.Len(t, again.Store.Cart(), 1)
}

func TestSweep_EvictsIdleSessions(t *testing.T) {
	r := NewRegistry(repository.NewMemoryRepository(), nil, Config{IdleTTL: time.Minute}, logger.Nop())
	defer r.Close()
	now := time.Now()
	r.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := r.Get(ctx, "old")
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	_, err = r.Get(ctx, "fresh")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	r.sweep()

	assert.Nil(t, r.lookup("old"))
	assert.NotNil(t, r.lookup("fresh"))
}

func TestGet_StorageOutageKeepsPersistedCart(t *testing.T) {
	mem := repository.NewMemoryRepository()
	ctx := context.Background()

	seed := newRegistry(mem, nil)
	s, err := seed.Get(ctx, "s1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		s.Store.AddToCart(domain.Product{ID: 1, Title: "Tee", Price: 10})
	}
	s.Store.AddToCart(domain.Product{ID: 2, Title: "Cap", Price: 5})
	seed.Close()
	before, err := mem.Get(ctx, "s1:cart")
	require.NoError(t, err)

	repo := &flakyRepository{MemoryRepository: mem}
	repo.down.Store(true)
	r := newRegistry(repo, nil)
	defer r.Close()

	_, err = r.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrStateUnavailable)
	assert.Equal(t, 0, r.Len())

	after, err := mem.Get(ctx, "s1:cart")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	repo.down.Store(false)
	s, err = r.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, s.Store.Cart(), 2)

	s.Store.AddToCart(domain.Product{ID: 9, Title: "Sock", Price: 2})

	reloaded := newRegistry(mem, nil)
	defer reloaded.Close()
	fresh, err := reloaded.Get(ctx, "s1")
	require.NoError(t, err)
	cart := fresh.Store.Cart()
	require.Len(t, cart, 3)
	assert.Equal(t, int64(1), cart[0].ID)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.Equal(t, int64(9), cart[2].ID)
}

func TestGet_SkipsClosedSession(t *testing.T) {
	r := newRegistry(repository.NewMemoryRepository(), nil)
	defer r.Close()
	ctx := context.Background()

	s, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	s.close()

	again, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	assert.False(t, again.closed.Load())
}

func TestDrop_LateWriteStillPersisted(t *testing.T) {
	r := newRegistry(repository.NewMemoryRepository(), nil)
	defer r.Close()
	ctx := context.Background()

	held, err := r.Get(ctx, "s1")
	require.NoError(t, err)

	r.Drop("s1")
	held.Store.AddToCart(domain.Product{ID: 1, Title: "Tee"})

	next, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, held, next)
	require.Len(t, next.Store.Cart(), 1)
	assert.Equal(t, "Tee", next.Store.Cart()[0].Title)
}

func TestSweep_SparesSessionTouchedBeforeEviction(t *testing.T) {
	r := NewRegistry(repository.NewMemoryRepository(), nil, Config{IdleTTL: time.Minute}, logger.Nop())
	defer r.Close()
	ctx := context.Background()
	now := time.Now()
	r.now = func() time.Time { return now }

	s, err := r.Get(ctx, "s1")
	require.NoError(t, err)

	// idle by the previous touch, used again before the sweep runs
	now = now.Add(2 * time.Minute)
	_, err = r.Get(ctx, "s1")
	require.NoError(t, err)
	r.sweep()

	assert.Same(t, s, r.lookup("s1"))
	assert.False(t, s.closed.Load())

	now = now.Add(2 * time.Minute)
	r.sweep()
	assert.Nil(t, r.lookup("s1"))
	assert.True(t, s.closed.Load())

	again, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := NewRegistry(repository.NewMemoryRepository(), nil, Config{SweepInterval: 5 * time.Millisecond}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
