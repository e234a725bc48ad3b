package models

import "time"

// PageState tracks popup page content through its two states
type PageState string

const (
	PageLoading  PageState = "loading"
	PageRendered PageState = "rendered"
)

// PopupSession groups the coincident features under one click into a
// paged sequence. Generation changes whenever the session is superseded
// so a stale summary resolution can be discarded.
type PopupSession struct {
	ID         string    `json:"id"`
	Generation string    `json:"generation"`
	Features   []Feature `json:"features"`
	Index      int       `json:"index"`
	CreatedAt  time.Time `json:"created_at"`
}

// PageCount 返回分页总数
func (s *PopupSession) PageCount() int {
	return len(s.Features)
}

// PopupPage is the rendered content of one session page
type PopupPage struct {
	SessionID string    `json:"session_id"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	State     PageState `json:"state"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Summary   *Summary  `json:"summary,omitempty"`
}
