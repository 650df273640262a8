package repository

import (
	"context"

	"deliveryOps/models"
)

// LinkedUserSource yields users that have an identity provider subject.
type LinkedUserSource interface {
	FetchLinkedUsers(ctx context.Context) ([]models.User, error)
}

// UserRepositoryI defines operations on User entities of the local SQLite store.
// Apart from FetchLinkedUsers the methods use "?" placeholders and are meant for
// seeding that store and for tests; they do not run against PostgreSQL.
type UserRepositoryI interface {
	LinkedUserSource
	Create(ctx context.Context, email, role string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	LinkSubject(ctx context.Context, email, sub string) error
	UpdateRoleByEmail(ctx context.Context, email, role string) error
	Delete(ctx context.Context, id int64) error
}

var (
	_ UserRepositoryI  = (*UserRepository)(nil)
	_ LinkedUserSource = (*ContainerSource)(nil)
)
