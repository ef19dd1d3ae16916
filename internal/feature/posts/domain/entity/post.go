// Package entity defines the domain entities for the posts feature.
package entity

import "time"

// Post represents a short text entry published by a user.
// Posts are immutable once created and are never deleted.
type Post struct {
	// ID is the unique identifier for the post. Feeds order by it ascending,
	// so it doubles as the chronological ordering key.
	ID uint `gorm:"primaryKey"`

	// Body is the post text.
	Body string `gorm:"size:140;not null"`

	// UserID references the author. Every post has exactly one author.
	UserID uint `gorm:"index;not null"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time
}

// Page is one bounded slice of an ordered post listing plus the
// navigation metadata needed to build next/prev links.
type Page struct {
	Items    []Post
	Page     int
	PerPage  int
	Total    int64
	HasNext  bool
	HasPrev  bool
	NextPage int
	PrevPage int
}
