package services

import (
	"context"
	"errors"
	"time"

	"whiteboard/internal/datastore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg"

	"github.com/google/uuid"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidActivity = errors.New("invalid activity kind")

type ServiceActivity struct {
	container *do.Injector
	store     datastore.Store
	locker    interfaces.Locker
	logger    *zap.Logger
	clock     Clock

	serviceConfig      *ServiceConfig
	serviceLedger      *ServiceLedger
	serviceAchievement *ServiceAchievement
}

func NewServiceActivity(container *do.Injector) (*ServiceActivity, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	locker, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceLedger, err := do.Invoke[*ServiceLedger](container)
	if err != nil {
		return nil, err
	}

	serviceAchievement, err := do.Invoke[*ServiceAchievement](container)
	if err != nil {
		return nil, err
	}

	return &ServiceActivity{container, store, locker, logger.Named("activity"), invokeClock(container), serviceConfig, serviceLedger, serviceAchievement}, nil
}

// ActivityRewards is read from config before a transaction starts.
type ActivityRewards struct {
	CheckInInk             int64
	DailyCompletePrismatic int64
}

func (service *ServiceActivity) Rewards(ctx context.Context) ActivityRewards {
	return ActivityRewards{
		CheckInInk:             int64(service.serviceConfig.GetInt(ctx, CONFIG_CHECK_IN_INK_REWARD, DEFAULT_CHECK_IN_INK_REWARD)),
		DailyCompletePrismatic: int64(service.serviceConfig.GetInt(ctx, CONFIG_DAILY_COMPLETE_PRISMATIC_BONUS, DEFAULT_DAILY_COMPLETE_PRISMATIC_BONUS)),
	}
}

type ActivityUpdate struct {
	Activity              *models.DailyActivity `json:"activity"`
	Changed               bool                  `json:"changed"`
	DailyCompleted        bool                  `json:"daily_completed"`
	Bonus                 models.Amount         `json:"bonus"`
	CompletedAchievements []string              `json:"completed_achievements,omitempty"`
}

// observe runs after commit.
func (update *ActivityUpdate) observe() {
	if update != nil && update.DailyCompleted {
		metricDailyCompletions.Inc()
	}
}

type CheckInResult struct {
	Outcome
	Streak                int            `json:"streak,omitempty"`
	InkAwarded            int64          `json:"ink_awarded,omitempty"`
	DailyBonus            models.Amount  `json:"daily_bonus"`
	Currency              *models.Amount `json:"currency,omitempty"`
	CompletedAchievements []string       `json:"completed_achievements,omitempty"`
}

type ActivitiesView struct {
	Date        time.Time             `json:"date"`
	Today       models.ActivityStatus `json:"today"`
	Streak      int                   `json:"streak"`
	LastCheckIn *time.Time            `json:"last_check_in"`
	Currency    models.Amount         `json:"currency"`
}

// RecordActivityInTx sets one of today's flags. Setting a flag that is already
// set changes nothing. When the call completes the day, the bonus is credited
// and daily_complete achievements advance; this happens at most once per day.
func (service *ServiceActivity) RecordActivityInTx(ctx context.Context, repo datastore.Repository, userID uuid.UUID, kind models.ActivityKind, rewards ActivityRewards) (*ActivityUpdate, error) {
	if !kind.Valid() {
		return nil, ErrInvalidActivity
	}

	today := pkg.CalendarDay(service.clock())
	activity, err := repo.LockDailyActivity(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	update := &ActivityUpdate{Activity: activity}
	wasCompleted := activity.AllCompleted()
	if !activity.Mark(kind) {
		return update, nil
	}
	update.Changed = true

	if err := repo.UpdateDailyActivity(ctx, activity); err != nil {
		return nil, err
	}

	if wasCompleted || !activity.AllCompleted() {
		return update, nil
	}

	update.DailyCompleted = true
	update.Bonus = models.Amount{Prismatic: rewards.DailyCompletePrismatic}
	if _, err := service.serviceLedger.Credit(ctx, repo, userID, update.Bonus, REASON_DAILY_COMPLETE); err != nil {
		return nil, err
	}

	update.CompletedAchievements, err = service.serviceAchievement.AdvanceInTx(ctx, repo, userID, models.TriggerDailyComplete, 1)
	if err != nil {
		return nil, err
	}
	return update, nil
}

// RecordActivity records kind in its own transaction. A check-in goes through
// the full check-in flow so the streak stays consistent with the flag.
func (service *ServiceActivity) RecordActivity(ctx context.Context, userID uuid.UUID, kind models.ActivityKind) (*ActivityUpdate, error) {
	if !kind.Valid() {
		return nil, ErrInvalidActivity
	}

	rewards := service.Rewards(ctx)
	var update *ActivityUpdate
	err := withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			var err error
			if kind == models.ActivityCheckIn {
				_, update, err = service.checkInTx(ctx, repo, userID, rewards)
				return err
			}
			update, err = service.RecordActivityInTx(ctx, repo, userID, kind, rewards)
			return err
		})
	})
	if _, ok := asRejection(err); ok {
		activity, err := service.GetStatus(ctx, userID, service.clock())
		if err != nil {
			return nil, err
		}
		return &ActivityUpdate{Activity: activity}, nil
	}
	if err != nil {
		return nil, err
	}

	update.observe()
	return update, nil
}

// CheckIn marks today's check-in, moves the streak and pays the check-in reward.
// A second call on the same day is rejected without touching anything.
func (service *ServiceActivity) CheckIn(ctx context.Context, userID uuid.UUID) (*CheckInResult, error) {
	rewards := service.Rewards(ctx)

	var result *CheckInResult
	var update *ActivityUpdate
	err := withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			var err error
			result, update, err = service.checkInTx(ctx, repo, userID, rewards)
			return err
		})
	})
	if outcome, ok := asRejection(err); ok {
		return &CheckInResult{Outcome: countRejection(outcome)}, nil
	}
	if err != nil {
		return nil, err
	}

	update.observe()
	metricCheckIns.Inc()
	service.logger.Debug("checked in", zap.Stringer("user", userID), zap.Int("streak", result.Streak))
	return result, nil
}

func (service *ServiceActivity) checkInTx(ctx context.Context, repo datastore.Repository, userID uuid.UUID, rewards ActivityRewards) (*CheckInResult, *ActivityUpdate, error) {
	today := pkg.CalendarDay(service.clock())

	activity, err := repo.LockDailyActivity(ctx, userID, today)
	if err != nil {
		return nil, nil, err
	}
	if activity.CheckIn {
		return nil, nil, reject(CodeAlreadyCheckedIn, "already checked in today")
	}

	streak, err := repo.LockStreakState(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if streak.LastCheckIn != nil && pkg.SameDay(*streak.LastCheckIn, today) {
		return nil, nil, reject(CodeAlreadyCheckedIn, "already checked in today")
	}

	if streak.LastCheckIn != nil && pkg.CalendarDay(*streak.LastCheckIn).Equal(today.AddDate(0, 0, -1)) {
		streak.StreakDays++
	} else {
		streak.StreakDays = 1
	}
	streak.LastCheckIn = &today
	if err := repo.UpdateStreakState(ctx, streak); err != nil {
		return nil, nil, err
	}

	if _, err := service.serviceLedger.Credit(ctx, repo, userID, models.Amount{Ink: rewards.CheckInInk}, REASON_CHECK_IN); err != nil {
		return nil, nil, err
	}

	update, err := service.RecordActivityInTx(ctx, repo, userID, models.ActivityCheckIn, rewards)
	if err != nil {
		return nil, nil, err
	}

	milestones, err := service.serviceAchievement.RaiseToInTx(ctx, repo, userID, models.TriggerCheckInStreak, streak.StreakDays)
	if err != nil {
		return nil, nil, err
	}

	account, err := repo.GetCurrencyAccount(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	balance := account.Balance()

	return &CheckInResult{
		Outcome:               accepted(),
		Streak:                streak.StreakDays,
		InkAwarded:            rewards.CheckInInk,
		DailyBonus:            update.Bonus,
		Currency:              &balance,
		CompletedAchievements: append(milestones, update.CompletedAchievements...),
	}, update, nil
}

// GetStatus returns the flags for the calendar day containing date, all false
// when nothing was recorded.
func (service *ServiceActivity) GetStatus(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyActivity, error) {
	day := pkg.CalendarDay(date)
	activity, err := service.store.GetDailyActivity(ctx, userID, day)
	if errors.Is(err, datastore.ErrNotFound) {
		return &models.DailyActivity{UserID: userID, ActivityDate: day}, nil
	}
	return activity, err
}

// CurrentStreak is the stored streak while it is still alive: checked in
// today or yesterday. Older streaks read as 0.
func CurrentStreak(streak *models.StreakState, now time.Time) int {
	if streak == nil || streak.LastCheckIn == nil {
		return 0
	}
	today := pkg.CalendarDay(now)
	if pkg.CalendarDay(*streak.LastCheckIn).Before(today.AddDate(0, 0, -1)) {
		return 0
	}
	return streak.StreakDays
}

func (service *ServiceActivity) GetStreak(ctx context.Context, userID uuid.UUID) (*models.StreakState, error) {
	streak, err := service.store.GetStreakState(ctx, userID)
	if errors.Is(err, datastore.ErrNotFound) {
		return &models.StreakState{UserID: userID}, nil
	}
	return streak, err
}

func (service *ServiceActivity) GetActivities(ctx context.Context, userID uuid.UUID) (*ActivitiesView, error) {
	now := service.clock()

	var activity *models.DailyActivity
	var streak *models.StreakState
	var balance models.Amount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activity, err = service.GetStatus(gctx, userID, now)
		return err
	})
	g.Go(func() error {
		var err error
		streak, err = service.GetStreak(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		balance, err = service.serviceLedger.GetBalance(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ActivitiesView{
		Date:        pkg.CalendarDay(now),
		Today:       activity.Status(),
		Streak:      CurrentStreak(streak, now),
		LastCheckIn: streak.LastCheckIn,
		Currency:    balance,
	}, nil
}
