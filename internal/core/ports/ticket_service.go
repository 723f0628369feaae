package ports

import (
	"context"

	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/session"
)

// TicketPage is one page of search results plus pagination metadata.
type TicketPage struct {
	Records    []domain.TicketRecord
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// CreateTicketInput carries the fields for a new ticket. The subject is
// derived from CandidateName and Stack by the service.
type CreateTicketInput struct {
	CandidateName string
	Stack         string
	Description   string
}

// TicketService queries and creates tickets on the remote service under the
// session's resolved authority.
type TicketService interface {
	Search(ctx context.Context, sess *session.Session, filter domain.TicketFilter) (*TicketPage, error)
	Create(ctx context.Context, sess *session.Session, in CreateTicketInput) (*domain.TicketRecord, error)
}
