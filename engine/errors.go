// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

var (
	ErrNotReady          = errors.New("agencies are still loading")
	ErrAcquisitionFailed = errors.New("agency acquisition failed")
	ErrLoadInProgress    = errors.New("acquisition already in progress")
	ErrAlreadyLoaded     = errors.New("agencies already loaded")
	ErrUnknownRule       = errors.New("unknown filter rule")
	ErrUnknownField      = errors.New("unknown sort field")
	ErrRecordNotFound    = errors.New("agency not found")
)
