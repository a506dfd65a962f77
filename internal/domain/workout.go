package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkoutStatus tracks an active workout's lifecycle.
type WorkoutStatus string

const (
	WorkoutActive    WorkoutStatus = "ACTIVE"
	WorkoutCompleted WorkoutStatus = "COMPLETED"
)

// TempIDPrefix marks plans that have not been saved yet.
const TempIDPrefix = "temp-"

var (
	ErrNotOwner         = errors.New("workout belongs to another user")
	ErrWorkoutNotActive = errors.New("workout is not active")
	ErrSetOutOfRange    = errors.New("exercise or set index out of range")
	ErrWorkoutNotInPlan = errors.New("workout index out of range for plan")
	ErrEmptyWorkoutName = errors.New("workout name is required")
)

// NewTempID returns a client-side id for an unsaved plan.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was produced by NewTempID (or is empty).
func IsTempID(id string) bool {
	return id == "" || strings.HasPrefix(id, TempIDPrefix)
}

// PlannedExercise is a target within a workout template.
type PlannedExercise struct {
	ExerciseID string  `bson:"exerciseId" json:"exerciseId"`
	Name       string  `bson:"name" json:"name" validate:"required"`
	Sets       int     `bson:"sets" json:"sets" validate:"gte=0"`
	Reps       int     `bson:"reps" json:"reps" validate:"gte=0"`
	Weight     float64 `bson:"weight" json:"weight" validate:"gte=0"`
}

// Workout is a template inside a plan.
type Workout struct {
	Name      string            `bson:"name" json:"name" validate:"required"`
	Exercises []PlannedExercise `bson:"exercises" json:"exercises" validate:"dive"`
}

// PlannedWorkouts is a named plan holding an ordered list of workout templates.
type PlannedWorkouts struct {
	TimestampedRecord `bson:",inline"`
	Name              string    `bson:"name" json:"name" validate:"required"`
	Workouts          []Workout `bson:"workouts" json:"workouts" validate:"dive"`
}

// NewPlan returns an unsaved plan carrying a temporary id.
func NewPlan(name string, workouts []Workout) *PlannedWorkouts {
	if workouts == nil {
		workouts = []Workout{}
	}
	p := &PlannedWorkouts{Name: name, Workouts: workouts}
	p.ID = NewTempID()
	return p
}

// Set is one performed set.
type Set struct {
	Weight      float64 `bson:"weight" json:"weight" validate:"gte=0"`
	Reps        int     `bson:"reps" json:"reps" validate:"gte=0"`
	IsCompleted bool    `bson:"isCompleted" json:"isCompleted"`
}

// ActiveExercise carries concrete sets instead of targets.
type ActiveExercise struct {
	ExerciseID string `bson:"exerciseId" json:"exerciseId"`
	Name       string `bson:"name" json:"name" validate:"required"`
	Sets       []Set  `bson:"sets" json:"sets" validate:"dive"`
}

// ActiveWorkout is a session instantiated from a Workout template.
type ActiveWorkout struct {
	TimestampedRecord `bson:",inline"`
	UserID            string           `bson:"userId" json:"userId" validate:"required"`
	PlanID            string           `bson:"planId,omitempty" json:"planId,omitempty"`
	Name              string           `bson:"name" json:"name" validate:"required"`
	Status            WorkoutStatus    `bson:"status" json:"status" validate:"oneof=ACTIVE COMPLETED"`
	StartTime         time.Time        `bson:"startTime" json:"startTime"`
	EndTime           *time.Time       `bson:"endTime,omitempty" json:"endTime,omitempty"`
	Duration          int64            `bson:"duration" json:"duration" validate:"gte=0"` // Seconds
	Exercises         []ActiveExercise `bson:"exercises" json:"exercises" validate:"dive"`
}

// StartWorkout instantiates template for userID. Each planned exercise gets template.Sets
// uncompleted sets prefilled with the target reps and weight.
func StartWorkout(template Workout, planID, userID string, now time.Time) (*ActiveWorkout, error) {
	if template.Name == "" {
		return nil, ErrEmptyWorkoutName
	}
	exercises := make([]ActiveExercise, 0, len(template.Exercises))
	for _, pe := range template.Exercises {
		sets := make([]Set, pe.Sets)
		for i := range sets {
			sets[i] = Set{Weight: pe.Weight, Reps: pe.Reps}
		}
		exercises = append(exercises, ActiveExercise{
			ExerciseID: pe.ExerciseID,
			Name:       pe.Name,
			Sets:       sets,
		})
	}
	w := &ActiveWorkout{
		UserID:    userID,
		PlanID:    planID,
		Name:      template.Name,
		Status:    WorkoutActive,
		StartTime: now,
		Exercises: exercises,
	}
	w.Date = now
	return w, nil
}

func (w *ActiveWorkout) checkMutable(userID string) error {
	if w.UserID != userID {
		return ErrNotOwner
	}
	if w.Status != WorkoutActive {
		return ErrWorkoutNotActive
	}
	return nil
}

// UpdateSet replaces one set of an active workout owned by userID.
func (w *ActiveWorkout) UpdateSet(userID string, exercise, set int, s Set) error {
	if err := w.checkMutable(userID); err != nil {
		return err
	}
	if exercise < 0 || exercise >= len(w.Exercises) || set < 0 || set >= len(w.Exercises[exercise].Sets) {
		return ErrSetOutOfRange
	}
	w.Exercises[exercise].Sets[set] = s
	return nil
}

// Finish completes the workout: stamps EndTime and sets Duration in whole seconds.
func (w *ActiveWorkout) Finish(userID string, now time.Time) error {
	if err := w.checkMutable(userID); err != nil {
		return err
	}
	end := now
	w.EndTime = &end
	w.Duration = end.Unix() - w.StartTime.Unix()
	if w.Duration < 0 {
		w.Duration = 0
	}
	w.Status = WorkoutCompleted
	return nil
}

// CompletedSets counts sets marked complete.
func (w *ActiveWorkout) CompletedSets() int {
	n := 0
	for _, ex := range w.Exercises {
		for _, s := range ex.Sets {
			if s.IsCompleted {
				n++
			}
		}
	}
	return n
}

// Volume is the sum of weight*reps over completed sets.
func (w *ActiveWorkout) Volume() float64 {
	var v float64
	for _, ex := range w.Exercises {
		for _, s := range ex.Sets {
			if s.IsCompleted {
				v += s.Weight * float64(s.Reps)
			}
		}
	}
	return v
}

// WorkoutSummary aggregates completed workouts.
type WorkoutSummary struct {
	Workouts      int     `json:"workouts"`
	DaysTrained   int     `json:"daysTrained"`
	TotalDuration int64   `json:"totalDuration"`
	CompletedSets int     `json:"completedSets"`
	TotalVolume   float64 `json:"totalVolume"`
}

// SummarizeWorkouts recomputes stats from completed workouts; active ones are ignored.
func SummarizeWorkouts(workouts []*ActiveWorkout) WorkoutSummary {
	var s WorkoutSummary
	days := make(map[string]struct{})
	for _, w := range workouts {
		if w == nil || w.Status != WorkoutCompleted {
			continue
		}
		s.Workouts++
		days[DayKey(w.Date.Local())] = struct{}{}
		s.TotalDuration += w.Duration
		s.CompletedSets += w.CompletedSets()
		s.TotalVolume += w.Volume()
	}
	s.DaysTrained = len(days)
	return s
}
