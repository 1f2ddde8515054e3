package model

type Profile struct {
	Author    *User `json:"author"`
	PostCount int   `json:"post_count"`
	Following bool  `json:"following"`
}

type PostView struct {
	Post            *PostDetailed      `json:"post"`
	Comments        []*CommentDetailed `json:"comments"`
	AuthorPostCount int                `json:"author_post_count"`
}
