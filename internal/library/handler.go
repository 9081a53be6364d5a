package library

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mehmetcc/libdesk/internal/httpx"
	"github.com/mehmetcc/libdesk/internal/isbn"
	"go.uber.org/zap"
)

// Handler proxies the catalog part of the remote API for desk operators.
type Handler struct {
	api       API
	logger    *zap.Logger
	validator *validator.Validate
}

func NewHandler(api API, logger *zap.Logger) *Handler {
	return &Handler{
		api:       api,
		logger:    logger,
		validator: httpx.NewValidator(),
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/libraries", func(r chi.Router) {
		r.Get("/", h.ListLibraries)
		r.Post("/", h.CreateLibrary)
		r.Route("/{libraryID}", func(r chi.Router) {
			r.Put("/", h.UpdateLibrary)
			r.Delete("/", h.DeleteLibrary)
			r.Get("/books", h.ListBooks)
			r.Post("/books/{isbn}", h.AddBook)
			r.Put("/books/{isbn}", h.UpdateBook)
		})
	})
	r.Get("/books/{isbn}", h.LoadBook)
	return r
}

type libraryRequest struct {
	Name      string   `json:"name"       validate:"required,max=200"`
	Address   string   `json:"address"    validate:"required,max=300"`
	OpenDays  []string `json:"open_days"  validate:"required,min=1,dive,max=16"`
	OpenTime  string   `json:"open_time"  validate:"omitempty,len=5"`
	CloseTime string   `json:"close_time" validate:"omitempty,len=5"`
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"required,min=0"`
}

func (h *Handler) ListLibraries(w http.ResponseWriter, r *http.Request) {
	libs, err := h.api.ListLibraries(r.Context())
	if err != nil {
		h.writeError(w, "list libraries", err)
		return
	}
	if libs == nil {
		libs = []Library{}
	}
	httpx.WriteJSON(w, http.StatusOK, libs)
}

func (h *Handler) CreateLibrary(w http.ResponseWriter, r *http.Request) {
	in, ok := h.libraryInput(w, r)
	if !ok {
		return
	}
	lib, err := h.api.CreateLibrary(r.Context(), in)
	if err != nil {
		h.writeError(w, "create library", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, lib)
}

func (h *Handler) UpdateLibrary(w http.ResponseWriter, r *http.Request) {
	in, ok := h.libraryInput(w, r)
	if !ok {
		return
	}
	lib, err := h.api.UpdateLibrary(r.Context(), chi.URLParam(r, "libraryID"), in)
	if err != nil {
		h.writeError(w, "update library", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lib)
}

func (h *Handler) DeleteLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteLibrary(r.Context(), chi.URLParam(r, "libraryID")); err != nil {
		h.writeError(w, "delete library", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.api.ListLibraryBooks(r.Context(), chi.URLParam(r, "libraryID"))
	if err != nil {
		h.writeError(w, "list library books", err)
		return
	}
	if books == nil {
		books = []Book{}
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	h.stock(w, r, "add book", http.StatusCreated, h.api.AddBook)
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	h.stock(w, r, "update book", http.StatusOK, h.api.UpdateBook)
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request, op string, status int,
	call func(ctx context.Context, libraryID, isbn string, stock int) (*Book, error),
) {
	code, ok := h.isbnParam(w, r)
	if !ok {
		return
	}
	var req stockRequest
	if !httpx.DecodeAndValidate(w, r, h.validator, h.logger, &req) {
		return
	}
	book, err := call(r.Context(), chi.URLParam(r, "libraryID"), code, *req.Stock)
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	httpx.WriteJSON(w, status, book)
}

func (h *Handler) LoadBook(w http.ResponseWriter, r *http.Request) {
	code, ok := h.isbnParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	book, err := h.api.LoadBook(ctx, code)
	if err != nil {
		h.writeError(w, "load book", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, book)
}

func (h *Handler) libraryInput(w http.ResponseWriter, r *http.Request) (LibraryInput, bool) {
	var req libraryRequest
	if !httpx.DecodeAndValidate(w, r, h.validator, h.logger, &req) {
		return LibraryInput{}, false
	}
	in, err := NewLibraryInput(req.Name, req.Address, req.OpenDays, req.OpenTime, req.CloseTime)
	if err != nil {
		h.writeError(w, "library input", err)
		return LibraryInput{}, false
	}
	return in, true
}

func (h *Handler) isbnParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := isbn.Normalize(chi.URLParam(r, "isbn"))
	if err := isbn.Validate(code); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrValidationFailed,
			Message: err.Error(),
			Details: []httpx.FieldError{{Field: "isbn", Rule: "isbn13"}},
		})
		return "", false
	}
	return code, true
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteMessage(w, http.StatusUnprocessableEntity, httpx.ErrValidationFailed, err.Error())
	case IsNotFound(err):
		httpx.WriteMessage(w, http.StatusNotFound, httpx.ErrNotFound, err.Error())
	case errors.Is(err, ErrRemoteCall):
		httpx.WriteMessage(w, http.StatusBadGateway, httpx.ErrBadGateway, err.Error())
	default:
		h.logger.Error("internal server error", zap.String("op", op), zap.Error(err))
		httpx.WriteMessage(w, http.StatusInternalServerError, httpx.ErrInternal, "internal server error")
	}
}
