package scheduler

import "errors"

// ErrRotatorRequired is returned when a trigger is built without a rotator
var ErrRotatorRequired = errors.New("scheduler: mission rotator is required")
