package desk

import (
	"context"
	"errors"
	"strings"

	"github.com/mehmetcc/libdesk/internal/isbn"
	"github.com/mehmetcc/libdesk/internal/library"
	"github.com/mehmetcc/libdesk/internal/loan"
	"github.com/mehmetcc/libdesk/internal/person"
	"go.uber.org/zap"
)

type Service interface {
	Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error)
	ResolveUsername(ctx context.Context, req ResolveRequest) (string, error)
	CheckOut(ctx context.Context, req CheckRequest) (*Result, error)
	CheckIn(ctx context.Context, req CheckRequest) (*Result, error)
}

type deskService struct {
	registry person.Registry
	api      library.API
	loans    loan.Repo
	logger   *zap.Logger
}

// NewService builds the checkout/check-in coordinator. loans may be nil, in
// which case nothing is journaled locally.
func NewService(registry person.Registry, api library.API, loans loan.Repo, logger *zap.Logger) Service {
	return &deskService{
		registry: registry,
		api:      api,
		loans:    loans,
		logger:   logger,
	}
}

func (s *deskService) ResolveUsername(ctx context.Context, req ResolveRequest) (string, error) {
	res, err := s.Resolve(ctx, req)
	if err != nil {
		return "", err
	}
	return res.Person.Username, nil
}

func (s *deskService) Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	switch req.Mode {
	case ModeUsername:
		username := strings.TrimSpace(req.Username)
		if username == "" {
			return nil, invalid("username", "enter a username")
		}
		p, err := s.registry.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrUserNotFound
		}
		return &Resolution{Person: p}, nil

	case ModeCitizenID:
		citizenID := strings.TrimSpace(req.CitizenID)
		if citizenID == "" {
			return nil, invalid("citizen_id", "enter the citizen card number")
		}
		p, err := s.registry.FindByCitizenID(ctx, citizenID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrUserNotFound
		}
		return &Resolution{Person: p}, nil

	case ModeCreate:
		return s.findOrCreate(ctx, req)

	default:
		return nil, invalid("mode", "must be one of username, citizen_id, create")
	}
}

// findOrCreate reuses the record of an already registered citizen id and
// registers a new person otherwise.
func (s *deskService) findOrCreate(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	dto := &person.CreatePersonDTO{
		CitizenID: strings.TrimSpace(req.CitizenID),
		FirstName: strings.TrimSpace(req.FirstName),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      req.Role,
	}
	switch {
	case dto.CitizenID == "":
		return nil, invalid("citizen_id", "enter the citizen card number")
	case dto.FirstName == "":
		return nil, invalid("first_name", "enter the first name")
	case dto.Phone == "":
		return nil, invalid("phone", "enter the phone number")
	}

	existing, err := s.registry.FindByCitizenID(ctx, dto.CitizenID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Debug("reusing registered citizen", zap.String("username", existing.Username))
		return &Resolution{Person: existing}, nil
	}

	created, err := s.registry.Create(ctx, dto)
	switch {
	case err == nil:
		s.logger.Info("registered new user",
			zap.String("username", created.Username),
			zap.String("role", created.Role.String()),
		)
		return &Resolution{Person: created, Created: true}, nil
	case errors.Is(err, person.ErrDuplicateCitizenID):
		// registered by someone else between our lookup and insert
		p, lookupErr := s.registry.FindByCitizenID(ctx, dto.CitizenID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if p == nil {
			return nil, err
		}
		return &Resolution{Person: p}, nil
	case errors.Is(err, person.ErrMissingField):
		return nil, invalid("user", err.Error())
	default:
		return nil, err
	}
}

func (s *deskService) CheckOut(ctx context.Context, req CheckRequest) (*Result, error) {
	return s.lend(ctx, loan.KindCheckout, req)
}

func (s *deskService) CheckIn(ctx context.Context, req CheckRequest) (*Result, error) {
	if req.Mode == ModeCreate {
		return nil, invalid("mode", "check-in needs an existing user")
	}
	return s.lend(ctx, loan.KindCheckin, req)
}

func (s *deskService) lend(ctx context.Context, kind loan.Kind, req CheckRequest) (*Result, error) {
	libraryID := strings.TrimSpace(req.LibraryID)
	if libraryID == "" {
		return nil, invalid("library_id", "select a library")
	}
	code := isbn.Normalize(req.ISBN)
	if err := isbn.Validate(code); err != nil {
		return nil, invalid("isbn", err.Error())
	}

	res, err := s.Resolve(ctx, req.ResolveRequest)
	if err != nil {
		return nil, err
	}
	username := res.Person.Username

	// A registration above is already committed; a failing remote call
	// below leaves it in place.
	var checkout *library.Checkout
	if kind == loan.KindCheckout {
		checkout, err = s.api.CheckOut(ctx, libraryID, code, username)
	} else {
		checkout, err = s.api.CheckIn(ctx, libraryID, code, username)
	}
	if err != nil {
		s.logger.Warn("remote loan call failed",
			zap.String("kind", string(kind)),
			zap.String("username", username),
			zap.Bool("user_created", res.Created),
			zap.Error(err),
		)
		return nil, err
	}

	s.journal(ctx, kind, libraryID, code, username, checkout)
	return &Result{Resolution: *res, Checkout: checkout}, nil
}

func (s *deskService) journal(ctx context.Context, kind loan.Kind, libraryID, code, username string, c *library.Checkout) {
	if s.loans == nil || c == nil {
		return
	}
	e := loan.Entry{
		Kind:      kind,
		LibraryID: libraryID,
		ISBN:      code,
		Username:  username,
		RemoteID:  c.ID.String(),
	}
	if due, ok := c.Due(); ok {
		e.DueDate = &due
	}
	if _, err := s.loans.Record(ctx, e); err != nil {
		s.logger.Warn("failed to journal loan", zap.String("kind", string(kind)), zap.Error(err))
	}
}
