package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultTTL is how long a toast stays visible before it dismisses itself.
const DefaultTTL = 3000 * time.Millisecond

type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier receives transient user-facing messages.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Discard drops every message.
type Discard struct{}

func (Discard) Notify(Kind, string) {}

type entry struct {
	toast Toast
	timer *time.Timer
}

// Toaster keeps toasts until their timer fires or they are dismissed.
type Toaster struct {
	mu     sync.Mutex
	ttl    time.Duration
	order  []string
	toasts map[string]*entry
	closed bool
}

func NewToaster(ttl time.Duration) *Toaster {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Toaster{
		ttl:    ttl,
		toasts: make(map[string]*entry),
	}
}

func (t *Toaster) Notify(kind Kind, message string) {
	t.Push(kind, message)
}

// Push shows a toast and schedules its dismissal. A closed toaster returns the
// toast without keeping it.
func (t *Toaster) Push(kind Kind, message string) Toast {
	now := time.Now()
	toast := Toast{
		ID:        uuid.New().String(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(t.ttl),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return toast
	}

	id := toast.ID
	t.toasts[id] = &entry{
		toast: toast,
		timer: time.AfterFunc(t.ttl, func() { t.Dismiss(id) }),
	}
	t.order = append(t.order, id)
	return toast
}

// Active returns live toasts, oldest first.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Toast, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, t.toasts[id].toast)
	}
	return result
}

func (t *Toaster) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.toasts[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(t.toasts, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Close cancels every pending timer. Later pushes are not retained.
func (t *Toaster) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.toasts {
		e.timer.Stop()
	}
	t.toasts = make(map[string]*entry)
	t.order = nil
	t.closed = true
}
