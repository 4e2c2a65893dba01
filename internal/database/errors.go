package database

import "errors"

var (
	ErrEmptyMessage        = errors.New("message body is empty")
	ErrRoomNotFound        = errors.New("room not found")
	ErrApplicationNotFound = errors.New("application not found")
)
