package service

import (
	"errors"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
)

// --- Error Definitions ---
var (
	ErrEntryNotFound   = errors.New("nutrition entry not found")
	ErrMealNotFound    = errors.New("meal not found")
	ErrPlanNotFound    = errors.New("workout plan not found")
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrPhotoNotFound   = errors.New("progress photo not found")
	ErrStorageDisabled = errors.New("photo storage is not configured")
)

var faultMessages = map[repository.FaultCode]string{
	repository.CodePermissionDenied:  "You don't have permission to access this data.",
	repository.CodeNotFound:          "The item you're looking for no longer exists.",
	repository.CodeAlreadyExists:     "This item already exists.",
	repository.CodeResourceExhausted: "Too many requests. Please try again in a moment.",
	repository.CodeUnavailable:       "The service is unavailable. Check your connection and try again.",
	repository.CodeDeadlineExceeded:  "The request took too long. Please try again.",
	repository.CodeInvalidDocument:   "Some saved data could not be read.",
}

// UserMessage turns err into text suitable for showing to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, repository.ErrNotAuthenticated):
		return "Please sign in to continue."
	case errors.Is(err, repository.ErrInvalidArgument):
		return "The request was invalid: " + err.Error()
	case errors.Is(err, domain.ErrNotOwner):
		return "You can only change your own workouts."
	case errors.Is(err, domain.ErrWorkoutNotActive):
		return "This workout has already been finished."
	case errors.Is(err, domain.ErrSetOutOfRange), errors.Is(err, domain.ErrWorkoutNotInPlan):
		return "That exercise or set doesn't exist."
	case errors.Is(err, ErrEntryNotFound), errors.Is(err, ErrMealNotFound),
		errors.Is(err, ErrPlanNotFound), errors.Is(err, ErrWorkoutNotFound),
		errors.Is(err, ErrPhotoNotFound):
		return "The item you're looking for no longer exists."
	case errors.Is(err, ErrStorageDisabled):
		return "Photo uploads are not available."
	case errors.Is(err, ErrUserAlreadyExists):
		return "An account with this email already exists."
	case errors.Is(err, ErrAuthenticationFailed):
		return "Invalid email or password."
	case errors.Is(err, ErrInvalidToken):
		return "Your session has expired. Please sign in again."
	}
	if code, ok := repository.FaultCodeOf(err); ok {
		if msg, ok := faultMessages[code]; ok {
			return msg
		}
	}
	return "Something went wrong: " + err.Error()
}
