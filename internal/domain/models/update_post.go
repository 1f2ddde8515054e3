package model

// UpdatePostDTO replaces text and group of a post. A nil GroupID clears the
// group; a nil Image keeps the current image.
type UpdatePostDTO struct {
	Text    string       `json:"text"`
	GroupID *int64       `json:"group_id,omitempty"`
	Image   *ImageUpload `json:"-"`
}
