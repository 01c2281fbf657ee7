package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hubcheck/hubcheck/internal/stubhub/domain"
	"github.com/hubcheck/hubcheck/internal/stubhub/store"
	"github.com/hubcheck/hubcheck/pkg/cryptox"
	"github.com/hubcheck/hubcheck/pkg/idx"
	"github.com/hubcheck/hubcheck/pkg/slogx"
)

// SeedData are the credentials the hub is provisioned with at startup.
// Known fixed credentials let test suites authenticate without an
// out-of-band registration step.
type SeedData struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	ClientScopes []string
}

// SeedService provisions the initial user and client on first boot. A
// second boot against the same database is a no-op.
type SeedService struct {
	Store store.Store
}

// Seed creates the seed user and client inside one transaction if the
// database is empty.
func (s *SeedService) Seed(ctx context.Context, data SeedData) error {
	l := slogx.FromContext(ctx)

	usersEmpty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	clientsEmpty, err := s.Store.Clients().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !usersEmpty && !clientsEmpty {
		return nil
	}

	passHash, err := cryptox.HashPassword(data.Password)
	if err != nil {
		return err
	}
	secretHash, err := cryptox.HashPassword(data.ClientSecret)
	if err != nil {
		return err
	}

	userID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if usersEmpty {
			err := tx.Users().CreateUser(ctx, domain.User{
				ID:           userID,
				Username:     data.Username,
				DisplayName:  data.Username,
				PasswordHash: passHash,
			})
			if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
				return err
			}
		}

		if clientsEmpty {
			err := tx.Clients().CreateClient(ctx, domain.Client{
				ID:         data.ClientID,
				Name:       data.ClientID,
				SecretHash: secretHash,
				Scopes:     data.ClientScopes,
			})
			if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.Error("failed to seed initial credentials", slog.Any("error", err))
		return err
	}

	l.Info("seeded initial credentials",
		slog.String("username", data.Username),
		slog.String("client_id", data.ClientID),
	)
	return nil
}
