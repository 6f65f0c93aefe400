package domain

import "errors"

// ErrNotFound is returned when Move or Delete targets an item absent from the list.
var ErrNotFound = errors.New("item not found")

// ErrInvalidIndex is returned when Move's target index is outside the insertion range.
var ErrInvalidIndex = errors.New("invalid target index")

// ErrListFull is returned when Add would grow a list beyond its configured capacity.
var ErrListFull = errors.New("list is full")

// ErrEmptyItem is returned when an item value is empty.
var ErrEmptyItem = errors.New("item cannot be empty")

// ErrUnknownKind is returned when a list kind is neither goals nor tasks.
var ErrUnknownKind = errors.New("unknown list kind")

// ErrInstanceNotFound is returned when an instance ID cannot be found in the store.
var ErrInstanceNotFound = errors.New("instance not found")
