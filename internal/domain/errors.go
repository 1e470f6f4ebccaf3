package domain

import "errors"

var (
	ErrWorkblockActive   = errors.New("a workblock is already active")
	ErrWorkblockNotFound = errors.New("workblock not found")
	ErrIntervalNotFound  = errors.New("interval not found")
	ErrArchiveNotFound   = errors.New("daily archive not found")
	ErrArchiveEmpty      = errors.New("no workblocks found for date")
	ErrTimerRunning      = errors.New("a workblock timer is already running")
	ErrTimerMismatch     = errors.New("workblock is not owned by the running timer")
	ErrInvalidDuration   = errors.New("duration is shorter than one slice")
)
