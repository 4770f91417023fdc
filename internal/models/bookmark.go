package models

import "time"

type Bookmark struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BookmarkPage is one page of a listing together with the exact total count
// of records matching the active filter.
type BookmarkPage struct {
	Items []Bookmark `json:"items"`
	Total int        `json:"total"`
}

type InsertBookmarkRequestBody struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	UserID string `json:"user_id"`
}

type UpdateBookmarkRequestBody struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Change event kinds delivered by the realtime feed.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// ChangeEvent is a single row-change notification for the owner's bookmark set.
type ChangeEvent struct {
	Kind     string   `json:"kind"`
	Bookmark Bookmark `json:"bookmark"`
}
