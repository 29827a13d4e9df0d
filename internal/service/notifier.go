package service

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/set-night/surveypay/internal/domain"
)

// Notifier broadcasts plan-upgraded events to registered subscribers.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(domain.PlanUpgraded)
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers fn and returns a function that removes it.
func (n *Notifier) Subscribe(fn func(domain.PlanUpgraded)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscriber{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every current subscriber in registration order.
// Subscribers run on the caller's goroutine.
func (n *Notifier) Publish(ev domain.PlanUpgraded) {
	n.mu.Lock()
	subs := append([]subscriber(nil), n.subs...)
	n.mu.Unlock()

	for _, s := range subs {
		deliver(s.fn, ev)
	}
}

func deliver(fn func(domain.PlanUpgraded), ev domain.PlanUpgraded) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered in plan-upgraded subscriber",
				"panic", r,
				"user_id", ev.UserID,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn(ev)
}
