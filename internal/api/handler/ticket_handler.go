package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cvbridge/ticketing/internal/api/metrics"
	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/ports"
	"github.com/cvbridge/ticketing/internal/core/session"
)

// TicketHandler handles HTTP requests for ticket search and creation.
type TicketHandler struct {
	service  ports.TicketService
	sessions *session.Manager
}

func NewTicketHandler(service ports.TicketService, sessions *session.Manager) *TicketHandler {
	return &TicketHandler{service: service, sessions: sessions}
}

type createTicketRequest struct {
	CandidateName string `json:"candidate_name"`
	Stack         string `json:"stack"`
	Description   string `json:"description"`
}

type ticketPageResponse struct {
	Tickets    []domain.TicketRecord `json:"tickets"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// List handles GET /v1/tickets.
//
// @Summary      Search tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        date_range   query  string  false  "this_week, last_week, this_month, last_month, all_time"
// @Param        status       query  string  false  "open, closed, all"
// @Param        q            query  string  false  "Free-text search"
// @Param        page         query  int     false  "1-based page"
// @Param        assigned_to  query  string  false  "Assignee login, defaults to current user"
// @Success      200  {object}  ticketPageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /v1/tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	sess, err := ctxSession(c, h.sessions)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	filter := domain.TicketFilter{
		DateRange:     domain.DateRange(c.QueryParam("date_range")),
		Status:        domain.StatusFilter(c.QueryParam("status")),
		AssigneeLogin: c.QueryParam("assigned_to"),
		Search:        c.QueryParam("q"),
		Page:          page,
	}

	start := time.Now()
	result, err := h.service.Search(c.Request().Context(), sess, filter)
	metrics.TicketSearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TicketSearchesTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.TicketSearchesTotal.WithLabelValues("success").Inc()

	tickets := result.Records
	if tickets == nil {
		tickets = []domain.TicketRecord{}
	}
	return c.JSON(http.StatusOK, ticketPageResponse{
		Tickets:    tickets,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// Create handles POST /v1/tickets.
//
// @Summary      Create a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTicketRequest  true  "Ticket details"
// @Success      201   {object}  domain.TicketRecord
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	var req createTicketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	sess, err := ctxSession(c, h.sessions)
	if err != nil {
		return err
	}

	record, err := h.service.Create(c.Request().Context(), sess, ports.CreateTicketInput{
		CandidateName: req.CandidateName,
		Stack:         req.Stack,
		Description:   req.Description,
	})
	if err != nil {
		return err
	}
	metrics.TicketsCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, record)
}
