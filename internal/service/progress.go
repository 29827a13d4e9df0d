package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/set-night/surveypay/internal/config"
	"github.com/set-night/surveypay/internal/domain"
	"github.com/set-night/surveypay/internal/metrics"
)

// ProfileStore is the remote user-profile store.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdatePlan(ctx context.Context, userID string, upd domain.PlanUpdate) error
}

// ProgressCache is the local per-user backup of session progress.
type ProgressCache interface {
	LoadProgress(ctx context.Context, userID string) (domain.UserProgress, error)
	SaveProgress(ctx context.Context, userID string, p domain.UserProgress) error
}

// ProgressService owns the in-memory UserProgress mirror for every active
// session. Values are replaced wholesale on every mutation.
type ProgressService struct {
	mu       sync.Mutex
	sessions map[string]domain.UserProgress
	lastSeen map[string]time.Time
	cache    ProgressCache
	profiles ProfileStore
	plans    *PlanCatalog
	surveys  *config.SurveyConfig
	loc      *time.Location
	now      func() time.Time
}

// NewProgressService creates the session mirror. Daily survey counts roll
// over at midnight in loc.
func NewProgressService(cache ProgressCache, profiles ProfileStore, plans *PlanCatalog, surveys *config.SurveyConfig, loc *time.Location) *ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgressService{
		sessions: make(map[string]domain.UserProgress),
		lastSeen: make(map[string]time.Time),
		cache:    cache,
		profiles: profiles,
		plans:    plans,
		surveys:  surveys,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *ProgressService) today() string {
	return s.now().In(s.loc).Format(domain.CountDayLayout)
}

// rollover zeroes a count that belongs to an earlier day.
func rollover(p *domain.UserProgress, today string) bool {
	if p.CountedOn == today {
		return false
	}
	p.CountedOn = today
	if p.SurveysCompletedToday == 0 {
		return false
	}
	p.SurveysCompletedToday = 0
	return true
}

// Load returns the session progress, initialising it on first use from the
// survey defaults, the local cache and the remote profile, in that order of
// increasing precedence. Store failures degrade to defaults.
func (s *ProgressService) Load(ctx context.Context, userID string) (domain.UserProgress, error) {
	if userID == "" {
		return domain.UserProgress{}, fmt.Errorf("load progress: empty user id")
	}

	s.mu.Lock()
	p, ok := s.sessions[userID]
	if ok {
		s.touchLocked(userID, &p)
	}
	s.mu.Unlock()
	if ok {
		return p.Clone(), nil
	}

	p = s.surveys.DefaultProgress.Clone()

	cached, err := s.cache.LoadProgress(ctx, userID)
	switch {
	case err == nil:
		p = cached.Clone()
	case errors.Is(err, domain.ErrCacheMiss):
	default:
		slog.Warn("load cached progress", "error", err, "user_id", userID)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil && profile.CurrentPlan != "":
		p.CurrentPlanName = profile.CurrentPlan
	case err == nil, errors.Is(err, domain.ErrProfileNotFound):
	default:
		slog.Warn("load remote profile", "error", err, "user_id", userID)
	}

	if p.CurrentPlanName == "" {
		p.CurrentPlanName = s.plans.DefaultPlan()
	}
	rolled := rollover(&p, s.today())

	s.mu.Lock()
	if existing, ok := s.sessions[userID]; ok {
		s.touchLocked(userID, &existing)
		s.mu.Unlock()
		return existing.Clone(), nil
	}
	s.sessions[userID] = p
	s.lastSeen[userID] = s.now()
	s.mu.Unlock()

	if rolled {
		s.flush(ctx, userID, p)
	}
	return p.Clone(), nil
}

// touchLocked marks the session as used and rolls its count over in place
// when the day has changed. Callers hold s.mu.
func (s *ProgressService) touchLocked(userID string, p *domain.UserProgress) {
	s.lastSeen[userID] = s.now()
	if rollover(p, s.today()) {
		s.sessions[userID] = *p
	}
}

// Get returns the session progress without touching any store.
func (s *ProgressService) Get(userID string) (domain.UserProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.sessions[userID]
	if !ok {
		return domain.UserProgress{}, false
	}
	s.touchLocked(userID, &p)
	return p.Clone(), true
}

// Update applies fn to a copy of the session progress and, if fn succeeds,
// swaps the copy in and flushes it to the local cache.
func (s *ProgressService) Update(ctx context.Context, userID string, fn func(p *domain.UserProgress) error) (domain.UserProgress, error) {
	loaded, err := s.Load(ctx, userID)
	if err != nil {
		return domain.UserProgress{}, err
	}

	s.mu.Lock()
	cur, ok := s.sessions[userID]
	if !ok {
		// Evicted between Load and here.
		cur = loaded
	}
	next := cur.Clone()
	rollover(&next, s.today())
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return domain.UserProgress{}, err
	}
	s.sessions[userID] = next
	s.lastSeen[userID] = s.now()
	s.mu.Unlock()

	s.flush(ctx, userID, next)
	return next.Clone(), nil
}

func (s *ProgressService) SetPlan(ctx context.Context, userID, plan string) (domain.UserProgress, error) {
	return s.Update(ctx, userID, func(p *domain.UserProgress) error {
		p.CurrentPlanName = plan
		return nil
	})
}

// Limits returns the tier behind the session's current plan. A plan name that
// no longer exists yields the zero tier.
func (s *ProgressService) Limits(userID string) (domain.PlanTier, bool) {
	p, ok := s.Get(userID)
	if !ok {
		return domain.PlanTier{}, false
	}
	return domain.FindPlan(s.plans.Tiers(), p.CurrentPlanName)
}

// CompleteSurvey records a finished survey and credits the plan's per-survey
// earning to pending and total earnings.
func (s *ProgressService) CompleteSurvey(ctx context.Context, userID, surveyID string) (domain.UserProgress, error) {
	if _, ok := s.surveys.Survey(surveyID); !ok {
		return domain.UserProgress{}, domain.ErrSurveyNotFound
	}

	tiers := s.plans.Tiers()
	p, err := s.Update(ctx, userID, func(p *domain.UserProgress) error {
		if p.HasCompleted(surveyID) {
			return domain.ErrSurveyAlreadyDone
		}
		tier, _ := domain.FindPlan(tiers, p.CurrentPlanName)
		if p.SurveysCompletedToday >= tier.DailySurveyQuota {
			return domain.ErrDailyQuotaReached
		}

		earning := tier.Earning()
		p.SurveysCompletedToday++
		p.CompletedSurveyIDs = append(p.CompletedSurveyIDs, surveyID)
		p.PendingEarnings = p.PendingEarnings.Add(earning)
		p.TotalEarnings = p.TotalEarnings.Add(earning)
		return nil
	})
	if err != nil {
		return domain.UserProgress{}, err
	}

	metrics.SurveysCompleted.WithLabelValues(p.CurrentPlanName).Inc()
	return p, nil
}

// ResetDaily zeroes today's survey count for every loaded session. Progress
// that is only in the cache carries its count day and rolls over on the next
// Load.
func (s *ProgressService) ResetDaily(ctx context.Context) int {
	today := s.today()

	s.mu.Lock()
	reset := make(map[string]domain.UserProgress)
	for id, p := range s.sessions {
		next := p.Clone()
		next.SurveysCompletedToday = 0
		next.CountedOn = today
		s.sessions[id] = next
		if p.SurveysCompletedToday != 0 {
			reset[id] = next
		}
	}
	s.mu.Unlock()

	for id, p := range reset {
		s.flush(ctx, id, p)
	}
	return len(reset)
}

// EvictIdle drops sessions unused for longer than maxIdle. Their state stays
// in the local cache and is reloaded on the next update.
func (s *ProgressService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, seen := range s.lastSeen {
		if seen.After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		delete(s.lastSeen, id)
		n++
	}
	return n
}

func (s *ProgressService) Surveys() []domain.Survey {
	return append([]domain.Survey(nil), s.surveys.Surveys...)
}

func (s *ProgressService) flush(ctx context.Context, userID string, p domain.UserProgress) {
	if err := s.cache.SaveProgress(ctx, userID, p); err != nil {
		slog.Error("flush progress to cache", "error", err, "user_id", userID)
	}
}
