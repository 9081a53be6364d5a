package library

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mehmetcc/libdesk/internal/config"
	"go.uber.org/zap"
)

const (
	librariesPath    = "/libraries"
	libraryPath      = "/libraries/{libraryId}"
	libraryBooksPath = "/libraries/{libraryId}/books"
	libraryBookPath  = "/libraries/{libraryId}/books/{isbn}"
	checkoutPath     = "/libraries/{libraryId}/books/{isbn}/checkout"
	checkinPath      = "/libraries/{libraryId}/books/{isbn}/checkin"
	bookPath         = "/books/{isbn}"

	maxErrorBody = 512
)

// API is the subset of the remote library service the desk depends on.
type API interface {
	ListLibraries(ctx context.Context) ([]Library, error)
	CreateLibrary(ctx context.Context, in LibraryInput) (*Library, error)
	UpdateLibrary(ctx context.Context, libraryID string, in LibraryInput) (*Library, error)
	DeleteLibrary(ctx context.Context, libraryID string) error
	LoadBook(ctx context.Context, isbn string) (*Book, error)
	ListLibraryBooks(ctx context.Context, libraryID string) ([]Book, error)
	AddBook(ctx context.Context, libraryID, isbn string, stock int) (*Book, error)
	UpdateBook(ctx context.Context, libraryID, isbn string, stock int) (*Book, error)
	CheckOut(ctx context.Context, libraryID, isbn, username string) (*Checkout, error)
	CheckIn(ctx context.Context, libraryID, isbn, username string) (*Checkout, error)
}

// Client talks to the library management REST API.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg *config.LibraryAPIConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		// Only reads are retried; a repeated checkout would create a second loan.
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:   hc,
		logger: logger,
	}
}

func (c *Client) ListLibraries(ctx context.Context) ([]Library, error) {
	var out []Library
	req := c.http.R().SetResult(&out)
	if err := c.do(ctx, "list libraries", req, http.MethodGet, librariesPath); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateLibrary(ctx context.Context, in LibraryInput) (*Library, error) {
	var out Library
	req := c.http.R().SetBody(in).SetResult(&out)
	if err := c.do(ctx, "create library", req, http.MethodPost, librariesPath); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLibrary(ctx context.Context, libraryID string, in LibraryInput) (*Library, error) {
	var out Library
	req := c.http.R().
		SetPathParam("libraryId", libraryID).
		SetBody(in).
		SetResult(&out)
	if err := c.do(ctx, "update library", req, http.MethodPut, libraryPath); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLibrary(ctx context.Context, libraryID string) error {
	req := c.http.R().SetPathParam("libraryId", libraryID)
	return c.do(ctx, "delete library", req, http.MethodDelete, libraryPath)
}

func (c *Client) LoadBook(ctx context.Context, isbn string) (*Book, error) {
	var out Book
	req := c.http.R().SetPathParam("isbn", isbn).SetResult(&out)
	if err := c.do(ctx, "load book", req, http.MethodGet, bookPath); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListLibraryBooks(ctx context.Context, libraryID string) ([]Book, error) {
	var out []Book
	req := c.http.R().SetPathParam("libraryId", libraryID).SetResult(&out)
	if err := c.do(ctx, "list library books", req, http.MethodGet, libraryBooksPath); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddBook(ctx context.Context, libraryID, isbn string, stock int) (*Book, error) {
	return c.stock(ctx, "add book", http.MethodPost, libraryID, isbn, stock)
}

func (c *Client) UpdateBook(ctx context.Context, libraryID, isbn string, stock int) (*Book, error) {
	return c.stock(ctx, "update book", http.MethodPut, libraryID, isbn, stock)
}

func (c *Client) stock(ctx context.Context, op, method, libraryID, isbn string, stock int) (*Book, error) {
	if stock < 0 {
		return nil, ErrInvalidInput
	}
	var out Book
	req := c.http.R().
		SetPathParams(map[string]string{"libraryId": libraryID, "isbn": isbn}).
		SetBody(StockInput{Stock: stock}).
		SetResult(&out)
	if err := c.do(ctx, op, req, method, libraryBookPath); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckOut(ctx context.Context, libraryID, isbn, username string) (*Checkout, error) {
	return c.loan(ctx, "checkout", checkoutPath, libraryID, isbn, username)
}

func (c *Client) CheckIn(ctx context.Context, libraryID, isbn, username string) (*Checkout, error) {
	return c.loan(ctx, "checkin", checkinPath, libraryID, isbn, username)
}

func (c *Client) loan(ctx context.Context, op, path, libraryID, isbn, username string) (*Checkout, error) {
	var out Checkout
	req := c.http.R().
		SetPathParams(map[string]string{"libraryId": libraryID, "isbn": isbn}).
		SetQueryParam("username", username).
		SetResult(&out)
	if err := c.do(ctx, op, req, http.MethodPost, path); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op string, req *resty.Request, method, path string) error {
	c.logger.Info("calling library api",
		zap.String("op", op),
		zap.String("method", method),
		zap.Any("path_params", req.PathParams),
	)

	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		c.logger.Error("library api unreachable", zap.String("op", op), zap.Error(err))
		return &RemoteError{Op: op, Err: err}
	}
	if resp.IsError() {
		body := resp.String()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		c.logger.Warn("library api returned error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", body),
		)
		return &RemoteError{Op: op, StatusCode: resp.StatusCode(), Body: body}
	}
	return nil
}
