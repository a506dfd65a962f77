package mongo

import (
	"context"
	"errors"

	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes worth distinguishing.
var (
	permissionCodes = []int{13, 18}                   // Unauthorized, AuthenticationFailed
	exhaustedCodes  = []int{8000, 14031}              // Atlas quota, OutOfDiskSpace
	deadlineCodes   = []int{50}                       // MaxTimeMSExpired
	unavailableCode = []int{91, 189, 10107, 11600, 6} // shutdown, stepdown, not primary, host unreachable
)

// translateError converts a driver error into a repository.StoreFault.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return repository.NewFault(repository.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled), mongo.IsNetworkError(err):
		return repository.NewFault(repository.CodeUnavailable, err)
	case mongo.IsDuplicateKeyError(err):
		return repository.NewFault(repository.CodeAlreadyExists, err)
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		switch {
		case hasAnyCode(serverErr, permissionCodes):
			return repository.NewFault(repository.CodePermissionDenied, err)
		case hasAnyCode(serverErr, exhaustedCodes):
			return repository.NewFault(repository.CodeResourceExhausted, err)
		case hasAnyCode(serverErr, deadlineCodes):
			return repository.NewFault(repository.CodeDeadlineExceeded, err)
		case hasAnyCode(serverErr, unavailableCode):
			return repository.NewFault(repository.CodeUnavailable, err)
		}
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return repository.NewFault(repository.CodeUnavailable, err)
	}
	return repository.NewFault(repository.CodeUnknown, err)
}

func hasAnyCode(err mongo.ServerError, codes []int) bool {
	for _, c := range codes {
		if err.HasErrorCode(c) {
			return true
		}
	}
	return false
}
