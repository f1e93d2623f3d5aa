package domain

import "errors"

var (
	ErrGroupNotFound   = errors.New("rate card group not found")
	ErrGroupConflict   = errors.New("an active rate card group already exists for this customer and region")
	ErrProfileNotFound = errors.New("rate card profile not found")
	ErrItemNotFound    = errors.New("rate card item not found")
	ErrNegativeRate    = errors.New("rates must be non-negative")
	ErrDuplicateCode   = errors.New("an active item with this code already exists in the profile")
	ErrEmptyImport     = errors.New("import contains no rows")
)
