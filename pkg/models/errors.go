package models

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidFilterField = errors.New("invalid filter field")
	ErrInvalidFilterValue = errors.New("invalid filter value")
)
