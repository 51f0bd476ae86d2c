package storage

import (
	"context"
	"errors"

	"ghwiki/internal/reflection"
)

// ErrNoSnapshot is returned by LoadProject when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no project snapshot stored")

// ProjectStore persists the reflection tree between a scan and a render.
type ProjectStore interface {
	// SaveProject replaces the stored snapshot with p.
	SaveProject(ctx context.Context, p *reflection.Project) error

	// LoadProject rebuilds the last saved project.
	LoadProject(ctx context.Context) (*reflection.Project, error)

	Close() error
}
