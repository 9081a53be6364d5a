package desk

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mehmetcc/libdesk/internal/export"
	"github.com/mehmetcc/libdesk/internal/httpx"
	"github.com/mehmetcc/libdesk/internal/library"
	"github.com/mehmetcc/libdesk/internal/loan"
	"github.com/mehmetcc/libdesk/internal/person"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type Handler struct {
	svc       Service
	registry  person.Registry
	loans     loan.Repo
	logger    *zap.Logger
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler exposes the desk over HTTP. loans may be nil.
func NewHandler(svc Service, registry person.Registry, loans loan.Repo, logger *zap.Logger) *Handler {
	return &Handler{
		svc:       svc,
		registry:  registry,
		loans:     loans,
		logger:    logger,
		validator: httpx.NewValidator(),
		now:       time.Now,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/export.xlsx", h.ExportXLSX)
		r.Get("/export.json", h.ExportJSON)
		r.Get("/by-username/{username}", h.FindByUsername)
		r.Get("/by-citizen/{citizenID}", h.FindByCitizenID)
	})
	r.Get("/loans/{username}", h.ListLoans)
	r.Post("/libraries/{libraryID}/books/{isbn}/checkout", h.CheckOut)
	r.Post("/libraries/{libraryID}/books/{isbn}/checkin", h.CheckIn)
	return r
}

type createUserRequest struct {
	CitizenID string `json:"citizen_id" validate:"required,max=32"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	Phone     string `json:"phone"      validate:"required,max=32"`
	Role      string `json:"role"       validate:"omitempty,max=32"`
}

type borrowerRequest struct {
	Mode      string `json:"mode"       validate:"required,oneof=username citizen_id create"`
	Username  string `json:"username"   validate:"omitempty,max=128"`
	CitizenID string `json:"citizen_id" validate:"omitempty,max=32"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	Phone     string `json:"phone"      validate:"omitempty,max=32"`
	Role      string `json:"role"       validate:"omitempty,max=32"`
}

func (b borrowerRequest) resolve() ResolveRequest {
	return ResolveRequest{
		Mode:      Mode(b.Mode),
		Username:  b.Username,
		CitizenID: b.CitizenID,
		FirstName: b.FirstName,
		Phone:     b.Phone,
		Role:      b.Role,
	}
}

type userResponse struct {
	*person.Person
	Created bool `json:"created"`
}

type loanResponse struct {
	Username string            `json:"username"`
	Created  bool              `json:"user_created"`
	Checkout *library.Checkout `json:"checkout"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req createUserRequest
	if !httpx.DecodeAndValidate(w, r, h.validator, h.logger, &req) {
		return
	}

	res, err := h.svc.Resolve(ctx, ResolveRequest{
		Mode:      ModeCreate,
		CitizenID: req.CitizenID,
		FirstName: req.FirstName,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err != nil {
		h.writeError(w, "create user", err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, userResponse{Person: res.Person, Created: res.Created})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.registry.ListAll(r.Context())
	if err != nil {
		h.writeError(w, "list users", err)
		return
	}
	if users == nil {
		users = []person.Person{}
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) FindByUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	h.writeLookup(w, "find by username", func() (*person.Person, error) {
		return h.registry.FindByUsername(r.Context(), username)
	})
}

func (h *Handler) FindByCitizenID(w http.ResponseWriter, r *http.Request) {
	citizenID := strings.TrimSpace(chi.URLParam(r, "citizenID"))
	h.writeLookup(w, "find by citizen id", func() (*person.Person, error) {
		return h.registry.FindByCitizenID(r.Context(), citizenID)
	})
}

func (h *Handler) writeLookup(w http.ResponseWriter, op string, find func() (*person.Person, error)) {
	p, err := find()
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	if p == nil {
		h.writeError(w, op, ErrUserNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	users, err := h.registry.ListAll(r.Context())
	if err != nil {
		h.writeError(w, "export users", err)
		return
	}
	body, err := export.UsersXLSX(users)
	if err != nil {
		h.writeError(w, "export users", err)
		return
	}
	httpx.WriteAttachment(w, export.XLSXContentType, export.Filename("users", "xlsx", h.now()), body)
}

func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	users, err := h.registry.ListAll(r.Context())
	if err != nil {
		h.writeError(w, "export users", err)
		return
	}
	var buf bytes.Buffer
	if err := export.UsersJSON(&buf, users); err != nil {
		h.writeError(w, "export users", err)
		return
	}
	httpx.WriteAttachment(w, "application/json", export.Filename("users", "json", h.now()), buf.Bytes())
}

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	if h.loans == nil {
		httpx.WriteJSON(w, http.StatusOK, []loan.Entry{})
		return
	}
	entries, err := h.loans.ListByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, "list loans", err)
		return
	}
	if entries == nil {
		entries = []loan.Entry{}
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.lend(w, r, "checkout", h.svc.CheckOut)
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.lend(w, r, "checkin", h.svc.CheckIn)
}

func (h *Handler) lend(w http.ResponseWriter, r *http.Request, op string, call func(context.Context, CheckRequest) (*Result, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req borrowerRequest
	if !httpx.DecodeAndValidate(w, r, h.validator, h.logger, &req) {
		return
	}

	res, err := call(ctx, CheckRequest{
		LibraryID:      chi.URLParam(r, "libraryID"),
		ISBN:           chi.URLParam(r, "isbn"),
		ResolveRequest: req.resolve(),
	})
	if err != nil {
		h.writeError(w, op, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loanResponse{
		Username: res.Person.Username,
		Created:  res.Created,
		Checkout: res.Checkout,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		h.logger.Debug("rejected request", zap.String("op", op), zap.Error(err))
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrValidationFailed,
			Message: verr.Message,
			Details: []httpx.FieldError{{Field: verr.Field, Rule: "invalid"}},
		})
	case errors.Is(err, ErrUserNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, httpx.ErrNotFound, "user not found")
	case errors.Is(err, person.ErrDuplicateCitizenID):
		httpx.WriteMessage(w, http.StatusConflict, httpx.ErrConflict, "citizen id already registered")
	case errors.Is(err, person.ErrDuplicateUsername):
		httpx.WriteMessage(w, http.StatusConflict, httpx.ErrConflict, "username already exists")
	case library.IsNotFound(err):
		httpx.WriteMessage(w, http.StatusNotFound, httpx.ErrNotFound, err.Error())
	case errors.Is(err, library.ErrRemoteCall):
		httpx.WriteMessage(w, http.StatusBadGateway, httpx.ErrBadGateway, err.Error())
	default:
		h.logger.Error("internal server error", zap.String("op", op), zap.Error(err))
		httpx.WriteMessage(w, http.StatusInternalServerError, httpx.ErrInternal, "internal server error")
	}
}
