package holiday

import "context"

type HolidayRepository interface {
	Create(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, date string) error
	List(ctx context.Context) ([]Holiday, error)
	// DatesBetween returns the holiday date keys inside [from, to] as a
	// set, for workday counting and status derivation.
	DatesBetween(ctx context.Context, from, to string) (map[string]struct{}, error)
}
