package services

import (
	"context"
	"errors"

	"ticketera/internal/models"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
)

type CatalogStore interface {
	ListActiveEvents(ctx context.Context) ([]*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]*models.TicketType, error)
	GetTicketType(ctx context.Context, id string) (*models.TicketType, error)
}

type CatalogService struct {
	Repo CatalogStore
}

func NewCatalogService(repo CatalogStore) *CatalogService {
	return &CatalogService{Repo: repo}
}

func (s *CatalogService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return s.Repo.ListActiveEvents(ctx)
}

// GetEvent: inactive events are reported as not found.
func (s *CatalogService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if !models.ValidEventID(id) {
		return nil, ErrEventNotFound
	}
	ev, err := s.Repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil || !ev.Active {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

func (s *CatalogService) ListTicketTypes(ctx context.Context, eventID string) ([]*models.TicketType, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.Repo.ListTicketTypes(ctx, eventID)
}

func (s *CatalogService) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	tt, err := s.Repo.GetTicketType(ctx, id)
	if err != nil {
		return nil, err
	}
	if tt == nil || !tt.Active {
		return nil, ErrTicketTypeNotFound
	}
	return tt, nil
}
