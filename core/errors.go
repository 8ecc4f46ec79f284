package core

import (
	"errors"
	"fmt"
)

// Error classes. Match with errors.Is.
var (
	// ErrConfig marks an invalid channel set, resolution or reference.
	ErrConfig = errors.New("adc: invalid configuration")
	// ErrState marks an operation invoked in the wrong acquisition state.
	ErrState = errors.New("adc: invalid state")
	// ErrTimeout marks a conversion that did not complete in time.
	ErrTimeout = errors.New("adc: conversion timeout")
	// ErrRange marks a code wider than the configured resolution.
	ErrRange = errors.New("adc: sample out of range")
)

func configErr(what string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrConfig, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrConfig, what, cause)
}

func stateErr(op string, st AcquisitionState) error {
	return fmt.Errorf("%w: %s while %s", ErrState, op, st)
}
