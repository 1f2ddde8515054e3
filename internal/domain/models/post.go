package model

import (
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
)

// PostExcerptLen is the number of characters a post is shortened to in titles.
const PostExcerptLen = 15

type Post struct {
	ID        int64              `json:"id"`
	Text      string             `json:"text"`
	AuthorID  int64              `json:"author_id"`
	GroupID   *int64             `json:"group_id,omitempty"`
	Image     *string            `json:"image,omitempty"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (p *Post) Excerpt() string {
	if utf8.RuneCountInString(p.Text) <= PostExcerptLen {
		return p.Text
	}
	return string([]rune(p.Text)[:PostExcerptLen])
}
