// Package locker serialises work on a named key, either inside one process or
// across replicas sharing a Redis instance.
package locker

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// context expired.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive ownership of a key. The returned unlock func
// must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// SessionKey names the lock guarding one class on one day.
func SessionKey(className, date string) string {
	return fmt.Sprintf("attendance:session:%s:%s", className, date)
}
