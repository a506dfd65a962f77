package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/tracker"
)

// WorkoutTracker holds a user's completed workouts.
type WorkoutTracker = tracker.Tracker[domain.ActiveWorkout, *domain.ActiveWorkout]

type WorkoutService interface {
	// Plans
	NewPlan(name string, workouts []domain.Workout) *domain.PlannedWorkouts
	SavePlan(ctx context.Context, plan *domain.PlannedWorkouts) (*domain.PlannedWorkouts, error)
	GetPlan(ctx context.Context, id string) (*domain.PlannedWorkouts, error)
	ListPlans(ctx context.Context) ([]*domain.PlannedWorkouts, error)
	DeletePlan(ctx context.Context, id string) error

	// Sessions
	StartWorkout(ctx context.Context, planID string, workoutIndex int) (*domain.ActiveWorkout, error)
	GetActiveWorkout(ctx context.Context) (*domain.ActiveWorkout, error)
	UpdateSet(ctx context.Context, workoutID string, exercise, set int, s domain.Set) (*domain.ActiveWorkout, error)
	FinishWorkout(ctx context.Context, workoutID string) (*domain.ActiveWorkout, error)

	// History
	History(ctx context.Context, day time.Time) ([]*domain.ActiveWorkout, error)
	WeeklySummary(ctx context.Context) (domain.WorkoutSummary, error)
	Tracker() *WorkoutTracker
}

type workoutService struct {
	plans     repository.Repository[domain.PlannedWorkouts]
	workouts  repository.Repository[domain.ActiveWorkout]
	identity  repository.IdentityResolver
	completed *WorkoutTracker
	now       func() time.Time
	logger    *slog.Logger
}

// NewWorkoutService creates a WorkoutService. identity names the user that owns started
// workouts and is the only one allowed to change them.
func NewWorkoutService(
	plans repository.Repository[domain.PlannedWorkouts],
	workouts repository.Repository[domain.ActiveWorkout],
	identity repository.IdentityResolver,
	opts ...Option,
) WorkoutService {
	o := buildOptions(opts)
	logger := o.logger.With("service", "workout")
	completedOnly := tracker.RepositorySource(workouts,
		repository.Where("status", repository.OpEqual, domain.WorkoutCompleted))
	return &workoutService{
		plans:    plans,
		workouts: workouts,
		identity: identity,
		completed: tracker.New[domain.ActiveWorkout](completedOnly,
			tracker.WithNow(o.now),
			tracker.WithLogger(logger),
			tracker.WithTranslator(UserMessage),
		),
		now:    o.now,
		logger: logger,
	}
}

func (s *workoutService) Tracker() *WorkoutTracker {
	return s.completed
}

// NewPlan returns an unsaved plan; SavePlan assigns its real id.
func (s *workoutService) NewPlan(name string, workouts []domain.Workout) *domain.PlannedWorkouts {
	return domain.NewPlan(name, workouts)
}

// SavePlan creates the plan when it still has a temporary id, otherwise updates it.
func (s *workoutService) SavePlan(ctx context.Context, plan *domain.PlannedWorkouts) (*domain.PlannedWorkouts, error) {
	if plan == nil {
		return nil, fail(s.logger, nil, "save plan", repository.ErrInvalidArgument)
	}
	if plan.Workouts == nil {
		plan.Workouts = []domain.Workout{}
	}
	if domain.IsTempID(plan.ID) {
		if _, err := s.plans.Add(ctx, plan, repository.StampDate()); err != nil {
			return nil, fail(s.logger, nil, "save plan", err)
		}
		return plan, nil
	}

	if err := repository.Validate(plan); err != nil {
		return nil, fail(s.logger, nil, "save plan", err)
	}
	err := s.plans.Update(ctx, plan.ID, repository.Patch{"name": plan.Name, "workouts": plan.Workouts})
	if err != nil {
		return nil, fail(s.logger, nil, "save plan", err)
	}
	saved, err := s.GetPlan(ctx, plan.ID)
	if err != nil {
		return nil, fail(s.logger, nil, "save plan", err)
	}
	return saved, nil
}

func (s *workoutService) GetPlan(ctx context.Context, id string) (*domain.PlannedWorkouts, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (s *workoutService) ListPlans(ctx context.Context) ([]*domain.PlannedWorkouts, error) {
	plans, err := s.plans.GetAll(ctx, 0)
	if err != nil {
		return nil, fail(s.logger, nil, "list plans", err)
	}
	return plans, nil
}

// DeletePlan removes a saved plan. Unsaved plans only exist client side.
func (s *workoutService) DeletePlan(ctx context.Context, id string) error {
	if domain.IsTempID(id) {
		return nil
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		return fail(s.logger, nil, "delete plan", err)
	}
	return nil
}

// StartWorkout instantiates the plan's workout at workoutIndex for the current user.
func (s *workoutService) StartWorkout(ctx context.Context, planID string, workoutIndex int) (*domain.ActiveWorkout, error) {
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return nil, fail(s.logger, nil, "start workout", err)
	}
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, fail(s.logger, nil, "start workout", err)
	}
	if workoutIndex < 0 || workoutIndex >= len(plan.Workouts) {
		return nil, fail(s.logger, nil, "start workout", domain.ErrWorkoutNotInPlan)
	}

	w, err := domain.StartWorkout(plan.Workouts[workoutIndex], plan.ID, userID, s.now())
	if err != nil {
		return nil, fail(s.logger, nil, "start workout", err)
	}
	if _, err := s.workouts.Add(ctx, w); err != nil {
		return nil, fail(s.logger, nil, "start workout", err)
	}
	s.logger.Info("workout started", "id", w.ID, "plan", plan.ID)
	return w, nil
}

// GetActiveWorkout returns the most recently started unfinished workout, or nil.
func (s *workoutService) GetActiveWorkout(ctx context.Context) (*domain.ActiveWorkout, error) {
	active, err := s.workouts.Query(ctx, repository.Query{
		Filters: []repository.Filter{repository.Where("status", repository.OpEqual, domain.WorkoutActive)},
		Limit:   1,
	})
	if err != nil {
		return nil, fail(s.logger, nil, "get active workout", err)
	}
	if len(active) == 0 {
		return nil, nil
	}
	return active[0], nil
}

func (s *workoutService) UpdateSet(ctx context.Context, workoutID string, exercise, set int, value domain.Set) (*domain.ActiveWorkout, error) {
	w, userID, err := s.loadOwned(ctx, workoutID)
	if err != nil {
		return nil, fail(s.logger, nil, "update set", err)
	}
	if err := w.UpdateSet(userID, exercise, set, value); err != nil {
		return nil, fail(s.logger, nil, "update set", err)
	}
	if err := repository.Validate(w); err != nil {
		return nil, fail(s.logger, nil, "update set", err)
	}
	if err := s.workouts.Update(ctx, w.ID, repository.Patch{"exercises": w.Exercises}); err != nil {
		return nil, fail(s.logger, nil, "update set", err)
	}
	return w, nil
}

// FinishWorkout completes the workout and adds it to the history views.
func (s *workoutService) FinishWorkout(ctx context.Context, workoutID string) (*domain.ActiveWorkout, error) {
	w, userID, err := s.loadOwned(ctx, workoutID)
	if err != nil {
		return nil, fail(s.logger, s.completed, "finish workout", err)
	}
	if err := w.Finish(userID, s.now()); err != nil {
		return nil, fail(s.logger, s.completed, "finish workout", err)
	}
	err = s.workouts.Update(ctx, w.ID, repository.Patch{
		"status":   w.Status,
		"endTime":  w.EndTime,
		"duration": w.Duration,
	})
	if err != nil {
		return nil, fail(s.logger, s.completed, "finish workout", err)
	}
	s.logger.Info("workout finished", "id", w.ID, "duration", w.Duration)
	if err := s.completed.Reconcile(ctx, w); err != nil {
		s.logger.Warn("refresh after finish failed", "id", w.ID, "error", err)
	}
	return w, nil
}

// History selects day in the completed-workout tracker and returns that day's sessions.
func (s *workoutService) History(ctx context.Context, day time.Time) ([]*domain.ActiveWorkout, error) {
	entries, err := s.completed.Day(ctx, day)
	if err != nil {
		return nil, fail(s.logger, nil, "workout history", err)
	}
	return entries, nil
}

func (s *workoutService) WeeklySummary(ctx context.Context) (domain.WorkoutSummary, error) {
	if err := s.completed.Refresh(ctx); err != nil {
		return domain.WorkoutSummary{}, fail(s.logger, nil, "workout summary", err)
	}
	return domain.SummarizeWorkouts(s.completed.Snapshot().WeeklyEntries), nil
}

func (s *workoutService) loadOwned(ctx context.Context, id string) (*domain.ActiveWorkout, string, error) {
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return nil, "", err
	}
	w, err := s.workouts.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if w == nil {
		return nil, "", ErrWorkoutNotFound
	}
	return w, userID, nil
}
