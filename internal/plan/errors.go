package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrPlanNotFound means no plan contains the referenced meal or week.
	ErrPlanNotFound = errors.New("meal plan not found")

	// ErrMealNotFound means the meal id was not found in its plan's meals
	// array. Should not happen if the plan lookup was correct; defensive.
	ErrMealNotFound = errors.New("meal not found in meal plan")

	// ErrDishNotFound means the requested dish id is absent from the meal's
	// dishes, after legacy migration.
	ErrDishNotFound = errors.New("dish not found")

	// ErrIndexUnavailable marks a secondary-index-dependent lookup that is
	// temporarily unavailable (e.g. the leftover-meal index on a fresh
	// deploy). Callers that treat the lookup as optional context recover by
	// substituting an empty result.
	ErrIndexUnavailable = errors.New("lookup index unavailable")
)

// NotFoundError wraps one of the sentinel not-found errors with the id(s)
// involved, so callers always see which entity was missing.
type NotFoundError struct {
	Sentinel error
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Sentinel.Error(), e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Sentinel }

func notFound(sentinel error, id string) error {
	return &NotFoundError{Sentinel: sentinel, ID: id}
}
