package domain

import "time"

type Client struct {
	ID         string
	Name       string
	SecretHash string
	Scopes     []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
