package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/surveypay/internal/domain"
)

func TestLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2), "chats are counted separately")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow(1))
}

func TestLimiter_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow(1)
	now = now.Add(30 * time.Second)
	l.Allow(2)

	now = now.Add(45 * time.Second)
	l.Sweep()

	assert.NotContains(t, l.buckets, int64(1))
	assert.Contains(t, l.buckets, int64(2))
}

func TestRateLimit_PassesNonMessages(t *testing.T) {
	l := NewLimiter(0, time.Minute)
	called := false
	h := RateLimit(l)(func(context.Context, *bot.Bot, *models.Update) { called = true })

	h(context.Background(), nil, &models.Update{CallbackQuery: &models.CallbackQuery{}})
	assert.True(t, called)
}

type stubProgress struct {
	err  error
	live map[string]domain.UserProgress
}

func (s stubProgress) Get(userID string) (domain.UserProgress, bool) {
	p, ok := s.live[userID]
	return p, ok
}

func (s stubProgress) Load(_ context.Context, userID string) (domain.UserProgress, error) {
	if s.live != nil {
		panic("Load called for a live session")
	}
	if s.err != nil {
		return domain.UserProgress{}, s.err
	}
	return domain.UserProgress{CurrentPlanName: "Free"}, nil
}

type stubProfiles struct {
	created bool
	calls   []string
}

func (s *stubProfiles) EnsureProfile(_ context.Context, userID, defaultPlan string) (bool, error) {
	s.calls = append(s.calls, userID+":"+defaultPlan)
	return s.created, nil
}

type adminSet map[int64]bool

func (a adminSet) IsAdmin(id int64) bool { return a[id] }

func messageFrom(id int64) *models.Update {
	return &models.Update{Message: &models.Message{
		From: &models.User{ID: id, FirstName: "Ann", Username: "ann"},
		Chat: models.Chat{ID: id},
	}}
}

func TestUserLoader_RegistersAndLoads(t *testing.T) {
	profiles := &stubProfiles{created: true}
	var registered []string
	mw := UserLoader(stubProgress{}, profiles, func() string { return "Free" }, adminSet{42: true},
		func(userID, name, username string) { registered = append(registered, userID+"/"+name+"/"+username) })

	var got *Session
	mw(func(ctx context.Context, _ *bot.Bot, _ *models.Update) { got = GetSession(ctx) })(context.Background(), nil, messageFrom(42))

	require.NotNil(t, got)
	assert.Equal(t, "42", got.UserID)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "Free", got.Progress.CurrentPlanName)
	assert.Equal(t, []string{"42:Free"}, profiles.calls)
	assert.Equal(t, []string{"42/Ann/ann"}, registered)
}

func TestUserLoader_ExistingUserNotRegistered(t *testing.T) {
	profiles := &stubProfiles{}
	registered := 0
	mw := UserLoader(stubProgress{}, profiles, func() string { return "Free" }, adminSet{},
		func(string, string, string) { registered++ })

	var got *Session
	mw(func(ctx context.Context, _ *bot.Bot, _ *models.Update) { got = GetSession(ctx) })(context.Background(), nil, messageFrom(7))

	require.NotNil(t, got)
	assert.False(t, got.IsAdmin)
	assert.Zero(t, registered)
}

func TestUserLoader_SkipsBotsAndLoadFailures(t *testing.T) {
	profiles := &stubProfiles{}
	calls := 0
	var got *Session
	next := func(ctx context.Context, _ *bot.Bot, _ *models.Update) {
		calls++
		got = GetSession(ctx)
	}

	update := messageFrom(1)
	update.Message.From.IsBot = true
	UserLoader(stubProgress{}, profiles, func() string { return "Free" }, adminSet{}, nil)(next)(context.Background(), nil, update)
	assert.Nil(t, got)
	assert.Empty(t, profiles.calls)

	UserLoader(stubProgress{err: errors.New("empty user id")}, profiles, func() string { return "Free" }, adminSet{}, nil)(next)(context.Background(), nil, messageFrom(2))
	assert.Nil(t, got)
	assert.Equal(t, 2, calls)
}

func TestUserLoader_LiveSessionSkipsProfileStore(t *testing.T) {
	profiles := &stubProfiles{created: true}
	registered := 0
	progress := stubProgress{live: map[string]domain.UserProgress{"9": {CurrentPlanName: "Gold"}}}
	mw := UserLoader(progress, profiles, func() string { return "Free" }, adminSet{},
		func(string, string, string) { registered++ })

	var got *Session
	next := func(ctx context.Context, _ *bot.Bot, _ *models.Update) { got = GetSession(ctx) }

	mw(next)(context.Background(), nil, messageFrom(9))
	require.NotNil(t, got)
	assert.Equal(t, "Gold", got.Progress.CurrentPlanName)

	got = nil
	callback := &models.Update{CallbackQuery: &models.CallbackQuery{From: models.User{ID: 9}, Data: "plan_1"}}
	mw(next)(context.Background(), nil, callback)
	require.NotNil(t, got)
	assert.Equal(t, "9", got.UserID)

	assert.Empty(t, profiles.calls)
	assert.Zero(t, registered)
}

func TestRecover(t *testing.T) {
	var reported error
	h := Recover(func(err error) { reported = err })(func(context.Context, *bot.Bot, *models.Update) {
		panic("handler blew up")
	})

	assert.NotPanics(t, func() { h(context.Background(), nil, &models.Update{ID: 9}) })
	require.Error(t, reported)
	assert.Contains(t, reported.Error(), "handler blew up")
}

func TestDescribeUpdate(t *testing.T) {
	info := describeUpdate(&models.Update{Message: &models.Message{
		Text: "/verify@SurveyPayBot Ksh250 sent",
		Chat: models.Chat{ID: 5},
		From: &models.User{ID: 6},
	}})
	assert.Equal(t, updateInfo{kind: "message", action: "/verify", chatID: 5, userID: 6}, info)

	info = describeUpdate(&models.Update{Message: &models.Message{Text: "Ksh250 paid to 3566188"}})
	assert.Equal(t, "text", info.action)

	info = describeUpdate(&models.Update{CallbackQuery: &models.CallbackQuery{
		Data: "plan_3",
		From: models.User{ID: 6},
	}})
	assert.Equal(t, "callback", info.kind)
	assert.Equal(t, "plan_", info.action)
	assert.Equal(t, int64(6), info.userID)

	assert.Equal(t, "cur", callbackAction("cur"))
	assert.Equal(t, "other", describeUpdate(&models.Update{}).kind)
}
