package ports

import (
	"context"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

// SearchQuery is the fully resolved set of remote query parameters built by
// the ticket service. AssigneeID and AssigneeMe are mutually exclusive;
// AssigneeMe only works with a personal credential.
type SearchQuery struct {
	ProjectID  string
	AssigneeID int
	AssigneeMe bool
	Status     domain.StatusFilter
	Window     domain.DateWindow
	Search     string
	Offset     int
	Limit      int
}

// SearchResult carries one page of normalized tickets plus the total match
// count reported by the remote service.
type SearchResult struct {
	Records []domain.TicketRecord
	Total   int
}

// CreateIssueInput carries the remote payload for a new issue. Tracker,
// status and priority defaults are applied by the gateway.
type CreateIssueInput struct {
	ProjectID   string
	Subject     string
	Description string
	AssigneeID  int
	AssigneeMe  bool
}

// TicketGateway is the contract for calling the remote ticketing service.
// Implementations map HTTP failures onto the domain error taxonomy and never
// retry on their own; retry is the caller's policy.
type TicketGateway interface {
	// CurrentUser validates a credential against the remote "who am I"
	// endpoint and returns the identity it authenticates.
	CurrentUser(ctx context.Context, cred domain.Credential) (*domain.Identity, error)

	// Search runs a filtered, paginated issue query under the given authority.
	Search(ctx context.Context, auth domain.Authority, q SearchQuery) (*SearchResult, error)

	// CreateIssue creates a new issue under the given authority.
	CreateIssue(ctx context.Context, auth domain.Authority, in CreateIssueInput) (*domain.TicketRecord, error)

	// FindUserByLogin resolves a login to its remote identity, used when the
	// acting authority is the fallback credential. Returns ErrNotFound when
	// no exact login match exists.
	FindUserByLogin(ctx context.Context, auth domain.Authority, login string) (*domain.Identity, error)

	// Ping reports whether the remote service is reachable.
	Ping(ctx context.Context) error
}
