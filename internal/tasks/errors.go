package tasks

import "errors"

var (
	ErrInvalidTask  = errors.New("invalid task")
	ErrInvalidPatch = errors.New("invalid task update")
)
