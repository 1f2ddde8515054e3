package model

// Page is one window of a feed together with what a template needs to render
// pagination controls.
type Page struct {
	Items          []*PostDetailed `json:"items"`
	Number         int             `json:"number"`
	NumPages       int             `json:"num_pages"`
	TotalItems     int             `json:"total_items"`
	HasNext        bool            `json:"has_next"`
	HasPrevious    bool            `json:"has_previous"`
	NextNumber     int             `json:"next_number,omitempty"`
	PreviousNumber int             `json:"previous_number,omitempty"`
}
