package model

// PostDetailed is a post with its author and group already resolved.
// Group is nil when the post has no group or its group was deleted.
type PostDetailed struct {
	Post   *Post  `json:"post"`
	Author *User  `json:"author"`
	Group  *Group `json:"group,omitempty"`
}
