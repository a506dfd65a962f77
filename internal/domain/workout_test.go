package domain_test

import (
	"testing"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pushDay() domain.Workout {
	return domain.Workout{
		Name: "Push",
		Exercises: []domain.PlannedExercise{
			{ExerciseID: "bench", Name: "Bench Press", Sets: 3, Reps: 8, Weight: 80},
			{ExerciseID: "ohp", Name: "Overhead Press", Sets: 3, Reps: 10, Weight: 40},
		},
	}
}

func TestStartAndFinishWorkout(t *testing.T) {
	start := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	w, err := domain.StartWorkout(pushDay(), "plan1", "user1", start)
	require.NoError(t, err)

	assert.Equal(t, domain.WorkoutActive, w.Status)
	require.Len(t, w.Exercises, 2)
	for _, ex := range w.Exercises {
		require.Len(t, ex.Sets, 3)
		for _, s := range ex.Sets {
			assert.False(t, s.IsCompleted)
		}
	}
	assert.Equal(t, start, w.Date)
	assert.Nil(t, w.EndTime)

	end := start.Add(47*time.Minute + 30*time.Second)
	require.NoError(t, w.Finish("user1", end))
	assert.Equal(t, domain.WorkoutCompleted, w.Status)
	require.NotNil(t, w.EndTime)
	assert.Equal(t, end.Unix()-start.Unix(), w.Duration)
	assert.Equal(t, int64(2850), w.Duration)
}

func TestFinishWorkout_Rules(t *testing.T) {
	start := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	w, err := domain.StartWorkout(pushDay(), "", "user1", start)
	require.NoError(t, err)

	require.ErrorIs(t, w.Finish("user2", start.Add(time.Minute)), domain.ErrNotOwner)
	assert.Equal(t, domain.WorkoutActive, w.Status)

	// A clock that went backwards never yields a negative duration.
	require.NoError(t, w.Finish("user1", start.Add(-time.Minute)))
	assert.Equal(t, int64(0), w.Duration)

	require.ErrorIs(t, w.Finish("user1", start.Add(time.Hour)), domain.ErrWorkoutNotActive)
}

func TestUpdateSet(t *testing.T) {
	w, err := domain.StartWorkout(pushDay(), "", "user1", time.Now())
	require.NoError(t, err)

	require.NoError(t, w.UpdateSet("user1", 0, 2, domain.Set{Weight: 85, Reps: 6, IsCompleted: true}))
	assert.Equal(t, domain.Set{Weight: 85, Reps: 6, IsCompleted: true}, w.Exercises[0].Sets[2])
	assert.Equal(t, 1, w.CompletedSets())
	assert.InDelta(t, 510, w.Volume(), 1e-9)

	require.ErrorIs(t, w.UpdateSet("user1", 2, 0, domain.Set{}), domain.ErrSetOutOfRange)
	require.ErrorIs(t, w.UpdateSet("user1", 0, 3, domain.Set{}), domain.ErrSetOutOfRange)
	require.ErrorIs(t, w.UpdateSet("intruder", 0, 0, domain.Set{}), domain.ErrNotOwner)
}

func TestStartWorkout_RequiresName(t *testing.T) {
	_, err := domain.StartWorkout(domain.Workout{}, "", "user1", time.Now())
	require.ErrorIs(t, err, domain.ErrEmptyWorkoutName)
}

func TestNewPlan_TemporaryID(t *testing.T) {
	p := domain.NewPlan("PPL", nil)
	assert.True(t, domain.IsTempID(p.ID))
	assert.NotEqual(t, domain.TempIDPrefix, p.ID)
	assert.NotNil(t, p.Workouts)
	assert.False(t, domain.IsTempID("65f0c0ffee0000000000beef"))
}

func TestSummarizeWorkouts(t *testing.T) {
	start := time.Date(2026, 4, 1, 18, 0, 0, 0, time.Local)
	done, _ := domain.StartWorkout(pushDay(), "", "user1", start)
	require.NoError(t, done.UpdateSet("user1", 1, 0, domain.Set{Weight: 40, Reps: 10, IsCompleted: true}))
	require.NoError(t, done.Finish("user1", start.Add(time.Hour)))
	active, _ := domain.StartWorkout(pushDay(), "", "user1", start.Add(24*time.Hour))

	s := domain.SummarizeWorkouts([]*domain.ActiveWorkout{done, active, nil})
	assert.Equal(t, 1, s.Workouts)
	assert.Equal(t, 1, s.DaysTrained)
	assert.Equal(t, int64(3600), s.TotalDuration)
	assert.Equal(t, 1, s.CompletedSets)
	assert.InDelta(t, 400, s.TotalVolume, 1e-9)
}
