// Package dto defines data transfer objects for the posts feature's HTTP transport layer.
package dto

import (
	"time"

	"microblog_backend/internal/feature/posts/domain/entity"
)

// PostItem represents a single post in a JSON response.
type PostItem struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PageRes represents one page of a paginated feed.
// NextURL and PrevURL are null when no further page exists in that direction.
type PageRes struct {
	Posts   []PostItem `json:"posts"`
	NextURL *string    `json:"next_url"`
	PrevURL *string    `json:"prev_url"`
	Flashes []string   `json:"flashes,omitempty"`
}

// FromEntity converts a domain post to its response shape.
func FromEntity(p *entity.Post) PostItem {
	return PostItem{
		ID:        p.ID,
		Body:      p.Body,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
	}
}

// FromPage converts a domain page to its response shape using makeURL to
// build the next/prev links from a page number.
func FromPage(page *entity.Page, makeURL func(page int) string) PageRes {
	items := make([]PostItem, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, FromEntity(&page.Items[i]))
	}

	res := PageRes{Posts: items}
	if page.HasNext {
		u := makeURL(page.NextPage)
		res.NextURL = &u
	}
	if page.HasPrev {
		u := makeURL(page.PrevPage)
		res.PrevURL = &u
	}
	return res
}
