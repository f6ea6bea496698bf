package repository

import "errors"

// ErrDuplicateSession is returned when a session already exists for the
// class and date.
var ErrDuplicateSession = errors.New("attendance session already exists")
