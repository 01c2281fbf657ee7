package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hubcheck/hubcheck/internal/stubhub/domain"
	"github.com/hubcheck/hubcheck/internal/stubhub/store"
	"github.com/hubcheck/hubcheck/pkg/idx"
)

var (
	ErrEntryNotFound = errors.New("entry_not_found")
	ErrInvalidEntry  = errors.New("invalid_entry")
)

// EntryService implements CRUD over content entries.
type EntryService struct {
	Store store.Store
}

func (s *EntryService) List(ctx context.Context) ([]domain.Entry, error) {
	return s.Store.Entries().ListEntries(ctx)
}

func (s *EntryService) Get(ctx context.Context, id string) (domain.Entry, error) {
	e, err := s.Store.Entries().GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Entry{}, ErrEntryNotFound
		}
		return domain.Entry{}, err
	}
	return e, nil
}

// Create inserts a new entry owned by createdBy (the token subject).
func (s *EntryService) Create(ctx context.Context, e domain.Entry, createdBy string) (domain.Entry, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return domain.Entry{}, ErrInvalidEntry
	}

	e.ID = idx.New().String()
	e.CreatedBy = createdBy

	if err := s.Store.Entries().CreateEntry(ctx, e); err != nil {
		return domain.Entry{}, err
	}
	return s.Get(ctx, e.ID)
}

// Update replaces the mutable fields of an existing entry.
func (s *EntryService) Update(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return domain.Entry{}, ErrInvalidEntry
	}

	if err := s.Store.Entries().UpdateEntry(ctx, e); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Entry{}, ErrEntryNotFound
		}
		return domain.Entry{}, err
	}
	return s.Get(ctx, e.ID)
}

func (s *EntryService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Entries().DeleteEntry(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	return nil
}
