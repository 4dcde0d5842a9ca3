package domain

import "context"

type Service interface {
	// Current returns the active tax configuration, falling back to the
	// platform defaults when none has been saved yet.
	Current(ctx context.Context) (Config, error)
	Update(ctx context.Context, cfg Config) (Config, error)
}
