package store

import (
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
)

// Collection names a mirrored collection.
type Collection string

const (
	CollectionCart     Collection = "cart"
	CollectionWishlist Collection = "wishlist"
)

// Change is delivered to subscribers after a mutation. Exactly one of Cart and
// Wishlist is set, matching Collection.
type Change struct {
	Collection Collection
	Cart       []domain.CartItem
	Wishlist   []domain.WishlistItem
}

// AddResult tells the caller whether AddToCart bumped an existing line.
type AddResult struct {
	Incremented bool
	Quantity    int
}

// Store holds the cart, wishlist and signed-in user of one session.
// Mutations always start from the latest state held under mu, and published
// slices are never modified afterwards, so snapshots stay valid for readers.
type Store struct {
	mu       sync.RWMutex
	cart     []domain.CartItem
	wishlist []domain.WishlistItem
	user     *domain.User

	// notifyMu serializes subscriber delivery in mutation order.
	notifyMu    sync.Mutex
	subMu       sync.RWMutex
	subscribers map[int]func(Change)
	nextSubID   int

	notifier notify.Notifier
}

func New(notifier notify.Notifier) *Store {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Store{
		cart:        []domain.CartItem{},
		wishlist:    []domain.WishlistItem{},
		subscribers: make(map[int]func(Change)),
		notifier:    notifier,
	}
}

// Cart returns the current cart snapshot.
func (s *Store) Cart() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// Wishlist returns the current wishlist snapshot.
func (s *Store) Wishlist() []domain.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wishlist
}

func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) SetUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

func (s *Store) AddToCart(p domain.Product) AddResult {
	var res AddResult
	s.updateCart(func(prev []domain.CartItem) []domain.CartItem {
		res = AddResult{}
		next := make([]domain.CartItem, len(prev), len(prev)+1)
		copy(next, prev)
		for i := range next {
			if next[i].ID == p.ID {
				next[i].Quantity++
				res = AddResult{Incremented: true, Quantity: next[i].Quantity}
				return next
			}
		}
		res = AddResult{Quantity: 1}
		return append(next, domain.CartItem{Product: p, Quantity: 1})
	})

	if res.Incremented {
		s.notifier.Notify(notify.KindSuccess, "Increased quantity of "+p.Title+" in cart")
	} else {
		s.notifier.Notify(notify.KindSuccess, p.Title+" added to cart")
	}
	return res
}

// RemoveFromCart drops the line for productID; a missing line is not an error.
func (s *Store) RemoveFromCart(productID int64) {
	s.updateCart(func(prev []domain.CartItem) []domain.CartItem {
		next := make([]domain.CartItem, 0, len(prev))
		for _, item := range prev {
			if item.ID != productID {
				next = append(next, item)
			}
		}
		return next
	})
	s.notifier.Notify(notify.KindInfo, "Item removed from cart")
}

// UpdateQuantity adds delta to the line quantity, flooring at 1.
func (s *Store) UpdateQuantity(productID int64, delta int) {
	s.updateCart(func(prev []domain.CartItem) []domain.CartItem {
		next := make([]domain.CartItem, len(prev))
		copy(next, prev)
		for i := range next {
			if next[i].ID == productID {
				next[i].Quantity = max(1, next[i].Quantity+delta)
			}
		}
		return next
	})
}

func (s *Store) ClearCart() {
	s.updateCart(func([]domain.CartItem) []domain.CartItem {
		return []domain.CartItem{}
	})
}

// RemoveOrdered subtracts the ordered quantities from the cart and drops
// lines that reach zero. Lines added after the order snapshot stay.
func (s *Store) RemoveOrdered(ordered []domain.CartItem) {
	qty := make(map[int64]int, len(ordered))
	for _, item := range ordered {
		qty[item.ID] += item.Quantity
	}
	s.updateCart(func(prev []domain.CartItem) []domain.CartItem {
		next := make([]domain.CartItem, 0, len(prev))
		for _, item := range prev {
			item.Quantity -= qty[item.ID]
			if item.Quantity > 0 {
				next = append(next, item)
			}
		}
		return next
	})
}

// AddToWishlist inserts p unless its ID is already present. It reports
// whether the wishlist changed.
func (s *Store) AddToWishlist(p domain.Product) bool {
	added := false
	s.updateWishlist(func(prev []domain.WishlistItem) []domain.WishlistItem {
		added = false
		for _, item := range prev {
			if item.ID == p.ID {
				return prev
			}
		}
		added = true
		next := make([]domain.WishlistItem, len(prev), len(prev)+1)
		copy(next, prev)
		return append(next, p)
	})

	if added {
		s.notifier.Notify(notify.KindSuccess, p.Title+" added to wishlist")
	} else {
		s.notifier.Notify(notify.KindInfo, p.Title+" is already in your wishlist")
	}
	return added
}

func (s *Store) RemoveFromWishlist(productID int64) {
	s.updateWishlist(func(prev []domain.WishlistItem) []domain.WishlistItem {
		next := make([]domain.WishlistItem, 0, len(prev))
		for _, item := range prev {
			if item.ID != productID {
				next = append(next, item)
			}
		}
		return next
	})
	s.notifier.Notify(notify.KindInfo, "Item removed from wishlist")
}

func (s *Store) InWishlist(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.wishlist {
		if item.ID == productID {
			return true
		}
	}
	return false
}

// ToggleWishlist removes p when present and adds it otherwise, in one update.
// It returns true when p ends up in the wishlist.
func (s *Store) ToggleWishlist(p domain.Product) bool {
	added := false
	s.updateWishlist(func(prev []domain.WishlistItem) []domain.WishlistItem {
		next := make([]domain.WishlistItem, 0, len(prev)+1)
		for _, item := range prev {
			if item.ID != p.ID {
				next = append(next, item)
			}
		}
		added = len(next) == len(prev)
		if added {
			next = append(next, p)
		}
		return next
	})

	if added {
		s.notifier.Notify(notify.KindSuccess, p.Title+" added to wishlist")
	} else {
		s.notifier.Notify(notify.KindInfo, "Item removed from wishlist")
	}
	return added
}

// WishlistItem returns the stored product for productID.
func (s *Store) WishlistItem(productID int64) (domain.WishlistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.wishlist {
		if item.ID == productID {
			return item, true
		}
	}
	return domain.WishlistItem{}, false
}

// Replace swaps both collections wholesale. Used when rehydrating from storage;
// subscribers are not notified.
func (s *Store) Replace(cart []domain.CartItem, wishlist []domain.WishlistItem) {
	if cart == nil {
		cart = []domain.CartItem{}
	}
	if wishlist == nil {
		wishlist = []domain.WishlistItem{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart
	s.wishlist = wishlist
}

// Reset empties both collections, signs the user out and drops subscribers.
func (s *Store) Reset() {
	s.mu.Lock()
	s.cart = []domain.CartItem{}
	s.wishlist = []domain.WishlistItem{}
	s.user = nil
	s.mu.Unlock()

	s.subMu.Lock()
	s.subscribers = make(map[int]func(Change))
	s.subMu.Unlock()
}

// Subscribe registers fn for every later change and returns its cancel func.
// fn runs synchronously after the mutation and must not mutate the store.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) updateCart(fn func([]domain.CartItem) []domain.CartItem) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.cart = fn(s.cart)
	snapshot := s.cart
	s.mu.Unlock()

	s.publish(Change{Collection: CollectionCart, Cart: snapshot})
}

func (s *Store) updateWishlist(fn func([]domain.WishlistItem) []domain.WishlistItem) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.wishlist = fn(s.wishlist)
	snapshot := s.wishlist
	s.mu.Unlock()

	s.publish(Change{Collection: CollectionWishlist, Wishlist: snapshot})
}

func (s *Store) publish(c Change) {
	s.subMu.RLock()
	subs := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(c)
	}
}
