package model

type Follow struct {
	ID       int64 `json:"id"`
	UserID   int64 `json:"user_id"`
	AuthorID int64 `json:"author_id"`
}
