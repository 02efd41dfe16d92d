package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]Package, error)
	GetByID(ctx context.Context, id string) (Package, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
