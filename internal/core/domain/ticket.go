package domain

import "time"

// DateRange selects the created_on window applied to a ticket search.
type DateRange string

const (
	RangeThisWeek  DateRange = "this_week"
	RangeLastWeek  DateRange = "last_week"
	RangeThisMonth DateRange = "this_month"
	RangeLastMonth DateRange = "last_month"
	RangeAllTime   DateRange = "all_time"
)

// StatusFilter narrows a ticket search by remote status.
type StatusFilter string

const (
	StatusOpen   StatusFilter = "open"
	StatusClosed StatusFilter = "closed"
	StatusAll    StatusFilter = "all"
)

// PageSize is the fixed number of tickets per result page.
const PageSize = 15

// TicketFilter describes one page of a ticket search. Page is 1-based.
type TicketFilter struct {
	DateRange DateRange
	Status    StatusFilter
	// AssigneeLogin is the login whose tickets are wanted. Empty means
	// the current session identity.
	AssigneeLogin string
	Search        string
	Page          int
}

// Normalize fills zero values with their defaults and clamps the page.
func (f TicketFilter) Normalize() TicketFilter {
	if f.DateRange == "" {
		f.DateRange = RangeThisWeek
	}
	if f.Status == "" {
		f.Status = StatusOpen
	}
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

// Offset returns the 0-based record offset for the filter's page.
func (f TicketFilter) Offset() int {
	return (f.Page - 1) * PageSize
}

// TicketRecord is the normalized, read-only projection of a remote issue.
type TicketRecord struct {
	ID        int       `json:"id"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	Author    string    `json:"author"`
	Assignee  string    `json:"assignee,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
