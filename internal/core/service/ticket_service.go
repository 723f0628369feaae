package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/ports"
	"github.com/cvbridge/ticketing/internal/core/session"
	"github.com/cvbridge/ticketing/internal/pkg/retry"
)

// TicketService implements ticket search and creation against the remote
// service under the session's resolved authority.
type TicketService struct {
	gateway   ports.TicketGateway
	resolver  *CredentialResolver
	userCache ports.UserCache
	projectID string
	policy    retry.Policy
	log       zerolog.Logger
	now       func() time.Time
}

func NewTicketService(
	gateway ports.TicketGateway,
	resolver *CredentialResolver,
	userCache ports.UserCache,
	projectID string,
	policy retry.Policy,
	log zerolog.Logger,
) *TicketService {
	return &TicketService{
		gateway:   gateway,
		resolver:  resolver,
		userCache: userCache,
		projectID: projectID,
		policy:    policy,
		log:       log,
		now:       time.Now,
	}
}

// Search translates the filter into remote query parameters and returns one
// page of tickets ordered by most-recently-updated first. A page beyond the
// last record yields an empty page with the correct total. Transient remote
// failures are retried; an authority rejection surfaces immediately and
// never silently falls back to a different authority.
func (s *TicketService) Search(ctx context.Context, sess *session.Session, filter domain.TicketFilter) (*ports.TicketPage, error) {
	filter = filter.Normalize()

	auth := s.resolver.Resolve(sess)
	if auth.Source == domain.SourceUnavailable {
		return nil, domain.ErrNoAuthority
	}

	query := ports.SearchQuery{
		ProjectID: s.projectID,
		Status:    filter.Status,
		Window:    filter.DateRange.Window(s.now()),
		Search:    filter.Search,
		Offset:    filter.Offset(),
		Limit:     domain.PageSize,
	}

	login := filter.AssigneeLogin
	if login == "" && sess != nil {
		login = sess.Identity.Username
	}
	if login != "" {
		if auth.Source == domain.SourceSession && login == auth.Username {
			query.AssigneeMe = true
		} else {
			id, err := s.assigneeID(ctx, auth, login)
			if err != nil {
				return nil, err
			}
			query.AssigneeID = id
		}
	}

	var result *ports.SearchResult
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.gateway.Search(ctx, auth, query)
		return err
	})
	if err != nil {
		s.log.Warn().Err(err).Str("authority", string(auth.Source)).Msg("ticket search failed")
		return nil, err
	}

	if sess != nil {
		sess.SetFilter(filter)
	}

	return &ports.TicketPage{
		Records:    result.Records,
		Total:      result.Total,
		Page:       filter.Page,
		PageSize:   domain.PageSize,
		TotalPages: (result.Total + domain.PageSize - 1) / domain.PageSize,
	}, nil
}

// Create makes a new ticket with the fixed naming convention
// "{candidateName} ({stack})". Validation happens before any network call.
// Creation is never retried automatically; a duplicate ticket is worse than
// asking the caller to retry.
func (s *TicketService) Create(ctx context.Context, sess *session.Session, in ports.CreateTicketInput) (*domain.TicketRecord, error) {
	if in.CandidateName == "" {
		return nil, &domain.ValidationError{Field: "candidate_name", Reason: "must not be empty"}
	}
	if in.Description == "" {
		return nil, &domain.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	auth := s.resolver.Resolve(sess)
	if auth.Source == domain.SourceUnavailable {
		return nil, domain.ErrNoAuthority
	}

	input := ports.CreateIssueInput{
		ProjectID:   s.projectID,
		Subject:     fmt.Sprintf("%s (%s)", in.CandidateName, in.Stack),
		Description: in.Description,
	}

	// Assignee defaults to the identity backing the authority.
	if auth.Source == domain.SourceSession {
		input.AssigneeMe = true
	} else if auth.Username != "" {
		id, err := s.assigneeID(ctx, auth, auth.Username)
		if err != nil {
			return nil, err
		}
		input.AssigneeID = id
	}

	record, err := s.gateway.CreateIssue(ctx, auth, input)
	if err != nil {
		s.log.Warn().Err(err).Str("subject", input.Subject).Msg("ticket creation failed")
		return nil, err
	}

	s.log.Info().Int("ticket_id", record.ID).Str("subject", record.Subject).Msg("ticket created")
	return record, nil
}

// assigneeID resolves a login to its remote id, consulting the cache first.
func (s *TicketService) assigneeID(ctx context.Context, auth domain.Authority, login string) (int, error) {
	if id, ok, err := s.userCache.GetUserID(ctx, login); err == nil && ok {
		return id, nil
	} else if err != nil {
		s.log.Warn().Err(err).Str("login", login).Msg("user cache lookup failed")
	}

	var identity *domain.Identity
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		identity, err = s.gateway.FindUserByLogin(ctx, auth, login)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("resolve assignee %q: %w", login, err)
	}

	if cacheErr := s.userCache.SetUserID(ctx, login, identity.RemoteID); cacheErr != nil {
		s.log.Warn().Err(cacheErr).Str("login", login).Msg("user cache store failed")
	}
	return identity.RemoteID, nil
}
