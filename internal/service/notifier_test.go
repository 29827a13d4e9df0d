package service

import (
	"testing"

	"github.com/set-night/surveypay/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNotifier_DeliversInRegistrationOrder(t *testing.T) {
	n := NewNotifier()
	var got []string

	n.Subscribe(func(ev domain.PlanUpgraded) { got = append(got, "first:"+ev.NewPlan) })
	n.Subscribe(func(ev domain.PlanUpgraded) { got = append(got, "second:"+ev.NewPlan) })

	n.Publish(domain.PlanUpgraded{UserID: "u1", NewPlan: "Gold"})

	assert.Equal(t, []string{"first:Gold", "second:Gold"}, got)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier()
	calls := 0

	unsubscribe := n.Subscribe(func(domain.PlanUpgraded) { calls++ })
	n.Publish(domain.PlanUpgraded{NewPlan: "Gold"})
	unsubscribe()
	unsubscribe()
	n.Publish(domain.PlanUpgraded{NewPlan: "Gold"})

	assert.Equal(t, 1, calls)
}

func TestNotifier_PanickingSubscriberDoesNotStopDelivery(t *testing.T) {
	n := NewNotifier()
	delivered := false

	n.Subscribe(func(domain.PlanUpgraded) { panic("boom") })
	n.Subscribe(func(domain.PlanUpgraded) { delivered = true })

	assert.NotPanics(t, func() {
		n.Publish(domain.PlanUpgraded{NewPlan: "Gold"})
	})
	assert.True(t, delivered)
}

func TestNotifier_SubscribeDuringPublishWaitsForNextEvent(t *testing.T) {
	n := NewNotifier()
	lateCalls := 0

	n.Subscribe(func(domain.PlanUpgraded) {
		n.Subscribe(func(domain.PlanUpgraded) { lateCalls++ })
	})

	n.Publish(domain.PlanUpgraded{NewPlan: "Gold"})
	assert.Equal(t, 0, lateCalls)

	n.Publish(domain.PlanUpgraded{NewPlan: "Gold"})
	assert.Equal(t, 1, lateCalls)
}
