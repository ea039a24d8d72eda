package team

import "context"

type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*Team, error)
	List(ctx context.Context) ([]Team, error)
}
