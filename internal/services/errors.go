// Package services defines the business logic for offer ingestion,
// preference management, and the source/category catalogs. This file
// centralizes common service-level error values so they can be returned
// consistently and translated into user-facing responses at the transport
// layer (HTTP handler or bot command).
package services

import "errors"

var (
	// ErrUserNotFound indicates the Telegram user has never been registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrCategoryExists is returned when creating a category whose name is
	// already taken.
	ErrCategoryExists = errors.New("category already exists")

	// ErrCategoryNotFound indicates the requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrSourceNotFound indicates the requested source does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrInvalidPreferences is returned when preference values are outside
	// their allowed ranges (negative prices, discount outside [0,100], or an
	// inverted price range).
	ErrInvalidPreferences = errors.New("invalid preference values")
)
