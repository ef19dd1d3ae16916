// Package usecase implements the business logic for the posts feature.
package usecase

import "errors"

var (
	// ErrNoPosts is returned when the random home feed is requested while
	// no posts exist at all.
	ErrNoPosts = errors.New("no posts yet")

	// ErrPostNotFound is returned when a post cannot be found by ID.
	ErrPostNotFound = errors.New("post not found")
)
