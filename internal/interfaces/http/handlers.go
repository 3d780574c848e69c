package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mbet-dev/fund-tracker/internal/application/service"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	authService        service.AuthService
	requestService     service.RequestService
	reportService      service.ReportService
	appointmentService service.AppointmentService
	exporter           *export.ReportExporter
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	authService service.AuthService,
	requestService service.RequestService,
	reportService service.ReportService,
	appointmentService service.AppointmentService,
	exporter *export.ReportExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		authService:        authService,
		requestService:     requestService,
		reportService:      reportService,
		appointmentService: appointmentService,
		exporter:           exporter,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CredentialsRequest carries sign-up and sign-in bodies.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PrincipalResponse represents the authenticated identity in API responses
type PrincipalResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// SignInResponse represents an established session in API responses
type SignInResponse struct {
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expires_at"`
	User      PrincipalResponse `json:"user"`
}

// SubmitRequestBody carries a new fund request submission.
type SubmitRequestBody struct {
	Subject         string           `json:"subject"`
	CaseDescription string           `json:"case_description"`
	AmountRequired  *decimal.Decimal `json:"amount_required"`
	Currency        string           `json:"currency"`
	UrgencyLevel    string           `json:"urgency_level"`
	ImportanceLevel string           `json:"importance_level"`
}

// DecisionBody carries the admin decision parameters. Amount is only
// meaningful for partial approval.
type DecisionBody struct {
	Remark string           `json:"remark"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// ScheduleAppointmentBody carries a new appointment.
type ScheduleAppointmentBody struct {
	Date         string `json:"date" binding:"required"`
	Time         string `json:"time" binding:"required"`
	LocationType string `json:"location_type" binding:"required"`
	Description  string `json:"description"`
}

// FundRequestResponse represents a fund request in API responses. Amounts
// travel as decimal strings.
type FundRequestResponse struct {
	ID              int64   `json:"id"`
	Subject         string  `json:"subject"`
	CaseDescription string  `json:"case_description"`
	AmountRequired  string  `json:"amount_required"`
	AmountApproved  *string `json:"amount_approved,omitempty"`
	Currency        string  `json:"currency"`
	UrgencyLevel    string  `json:"urgency_level,omitempty"`
	ImportanceLevel string  `json:"importance_level,omitempty"`
	Status          string  `json:"status"`
	StatusDisplay   string  `json:"status_display"`
	Remark          string  `json:"remark,omitempty"`
	UserID          *string `json:"user_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// AppointmentResponse represents an appointment in API responses
type AppointmentResponse struct {
	ID           int64   `json:"id"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	LocationType string  `json:"location_type"`
	Description  string  `json:"description,omitempty"`
	CreatedBy    *string `json:"created_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// UserListingResponse represents the submitter listing in API responses.
// FailedIDs names the submitters whose lookup failed.
type UserListingResponse struct {
	Users     []UserRefResponse `json:"users"`
	FailedIDs []string          `json:"failed_ids,omitempty"`
}

// UserRefResponse is one resolved submitter
type UserRefResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// SignUp handles POST /api/v1/auth/signup
func (h *Handlers) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "email and password are required")
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data: PrincipalResponse{
			UserID:  user.ID.String(),
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		},
	})
}

// SignIn handles POST /api/v1/auth/signin
func (h *Handlers) SignIn(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "email and password are required")
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: SignInResponse{
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
			User: PrincipalResponse{
				UserID:  result.Principal.UserID.String(),
				Email:   result.Principal.Email,
				IsAdmin: result.Principal.IsAdmin,
			},
		},
	})
}

// GetSession handles GET /api/v1/auth/session
func (h *Handlers) GetSession(c *gin.Context) {
	principal := principalFrom(c)
	if principal == nil {
		h.respondError(c, entity.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PrincipalResponse{
			UserID:  principal.UserID.String(),
			Email:   principal.Email,
			IsAdmin: principal.IsAdmin,
		},
	})
}

// SignOut handles POST /api/v1/auth/signout
func (h *Handlers) SignOut(c *gin.Context) {
	if err := h.authService.SignOut(c.Request.Context(), bearerTokenFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// SubmitRequest handles POST /api/v1/requests
func (h *Handlers) SubmitRequest(c *gin.Context) {
	var req SubmitRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	input := service.SubmitInput{
		Subject:         req.Subject,
		CaseDescription: req.CaseDescription,
		AmountRequired:  req.AmountRequired,
		Currency:        entity.Currency(req.Currency),
		UrgencyLevel:    entity.Level(req.UrgencyLevel),
		ImportanceLevel: entity.Level(req.ImportanceLevel),
	}
	if principal := principalFrom(c); principal != nil {
		userID := principal.UserID
		input.UserID = &userID
	}

	request, err := h.requestService.Submit(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toFundRequestResponse(request),
	})
}

// ListRequests handles GET /api/v1/requests
func (h *Handlers) ListRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "5"))

	requests, page, err := h.requestService.ListPage(c.Request.Context(), page, perPage)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"page":     page,
			"requests": toFundRequestResponses(requests),
		},
	})
}

// ListPendingRequests handles GET /api/v1/requests/pending
func (h *Handlers) ListPendingRequests(c *gin.Context) {
	requests, err := h.requestService.ListPending(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toFundRequestResponses(requests),
	})
}

// ApproveRequest handles POST /api/v1/requests/:id/approve
func (h *Handlers) ApproveRequest(c *gin.Context) {
	h.decide(c, func(id int64, body DecisionBody) ([]*entity.FundRequest, error) {
		return h.requestService.Approve(c.Request.Context(), id, body.Remark)
	})
}

// PartiallyApproveRequest handles POST /api/v1/requests/:id/partially-approve
func (h *Handlers) PartiallyApproveRequest(c *gin.Context) {
	h.decide(c, func(id int64, body DecisionBody) ([]*entity.FundRequest, error) {
		return h.requestService.PartiallyApprove(c.Request.Context(), id, body.Remark, body.Amount)
	})
}

// DeclineRequest handles POST /api/v1/requests/:id/decline
func (h *Handlers) DeclineRequest(c *gin.Context) {
	h.decide(c, func(id int64, body DecisionBody) ([]*entity.FundRequest, error) {
		return h.requestService.Decline(c.Request.Context(), id, body.Remark)
	})
}

// decide parses the shared decision path and responds with the refreshed
// pending queue.
func (h *Handlers) decide(c *gin.Context, fn func(id int64, body DecisionBody) ([]*entity.FundRequest, error)) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid request ID")
		return
	}

	var body DecisionBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, "invalid request body")
			return
		}
	}

	pending, err := fn(id, body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toFundRequestResponses(pending),
	})
}

// GetChartReport handles GET /api/v1/reports/chart
func (h *Handlers) GetChartReport(c *gin.Context) {
	series, err := h.reportService.BuildChartSeries(
		c.Request.Context(),
		c.DefaultQuery("filter_type", service.FilterAll),
		c.Query("filter_value"),
		c.Query("time_period"),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    series,
	})
}

// GetSummaryReport handles GET /api/v1/reports/summary
func (h *Handlers) GetSummaryReport(c *gin.Context) {
	rows, err := h.reportService.BuildSummaryTable(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    rows,
	})
}

// ListReportUsers handles GET /api/v1/reports/users
func (h *Handlers) ListReportUsers(c *gin.Context) {
	listing, err := h.reportService.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response := UserListingResponse{}
	for _, user := range listing.Resolved {
		response.Users = append(response.Users, UserRefResponse{
			ID:    user.ID.String(),
			Email: user.Email,
		})
	}
	for _, id := range listing.FailedIDs {
		response.FailedIDs = append(response.FailedIDs, id.String())
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ExportReport handles GET /api/v1/reports/export
func (h *Handlers) ExportReport(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.reportService.BuildSummaryTable(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	series, err := h.reportService.BuildChartSeries(
		ctx,
		c.DefaultQuery("filter_type", service.FilterAll),
		c.Query("filter_value"),
		c.Query("time_period"),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("fund-requests-report-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.exporter.WriteReport(c.Writer, summary, series); err != nil {
		h.logger.Error("Failed to export report", "error", err)
		c.Status(http.StatusInternalServerError)
	}
}

// ScheduleAppointment handles POST /api/v1/appointments
func (h *Handlers) ScheduleAppointment(c *gin.Context) {
	var req ScheduleAppointmentBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "date, time and location_type are required")
		return
	}

	input := service.ScheduleInput{
		Date:         req.Date,
		Time:         req.Time,
		LocationType: entity.LocationType(req.LocationType),
		Description:  req.Description,
	}
	if principal := principalFrom(c); principal != nil {
		createdBy := principal.UserID
		input.CreatedBy = &createdBy
	}

	appointment, err := h.appointmentService.Schedule(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toAppointmentResponse(appointment),
	})
}

// ListAppointments handles GET /api/v1/appointments
func (h *Handlers) ListAppointments(c *gin.Context) {
	appointments, err := h.appointmentService.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	var responses []AppointmentResponse
	for _, appointment := range appointments {
		responses = append(responses, toAppointmentResponse(appointment))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responses,
	})
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// respondError maps domain errors to HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, entity.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, entity.ErrInvalidCredentials), errors.Is(err, entity.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, entity.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, entity.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	default:
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   message,
	})
}

func toFundRequestResponse(request *entity.FundRequest) FundRequestResponse {
	resp := FundRequestResponse{
		ID:              request.ID,
		Subject:         request.Subject,
		CaseDescription: request.CaseDescription,
		AmountRequired:  request.AmountRequired.String(),
		Currency:        string(request.Currency),
		UrgencyLevel:    string(request.UrgencyLevel),
		ImportanceLevel: string(request.ImportanceLevel),
		Status:          request.Status.String(),
		StatusDisplay:   request.Status.Display(),
		Remark:          request.Remark,
		CreatedAt:       request.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       request.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if request.AmountApproved != nil {
		approved := request.AmountApproved.String()
		resp.AmountApproved = &approved
	}
	if request.UserID != nil {
		userID := request.UserID.String()
		resp.UserID = &userID
	}

	return resp
}

func toFundRequestResponses(requests []*entity.FundRequest) []FundRequestResponse {
	responses := make([]FundRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, toFundRequestResponse(request))
	}
	return responses
}

func toAppointmentResponse(appointment *entity.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:           appointment.ID,
		Date:         appointment.ScheduledOn,
		Time:         appointment.ScheduledAt,
		LocationType: string(appointment.LocationType),
		Description:  appointment.Description,
		CreatedAt:    appointment.CreatedAt.UTC().Format(time.RFC3339),
	}
	if appointment.CreatedBy != nil {
		createdBy := appointment.CreatedBy.String()
		resp.CreatedBy = &createdBy
	}
	return resp
}
