package models

import "errors"

// ErrNotFound is returned when a looked-up entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when creating an entity whose unique key
// (SKU, tax code, request ID) is already taken.
var ErrDuplicateKey = errors.New("duplicate key")
