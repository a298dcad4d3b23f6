package ports

import (
	"context"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

type (
	Saver interface {
		// Create stores a new person and returns the generated id.
		Create(ctx context.Context, person *model.Person) (int64, error)
	}

	Fetcher interface {
		// FetchByID returns model.ErrPersonNotFound when no row matches.
		FetchByID(ctx context.Context, id int64) (*model.Person, error)
		Exists(ctx context.Context, id int64) (bool, error)
	}

	// Finder executes specifications. FindAll and Count must evaluate the
	// same predicate the same way, including the distinct modifier.
	Finder interface {
		FindAll(ctx context.Context, query model.Query) ([]*model.Person, error)
		Count(ctx context.Context, spec model.Specification) (int64, error)
	}

	Updater interface {
		Update(ctx context.Context, person *model.Person) error
	}

	Deleter interface {
		Delete(ctx context.Context, id int64) error
	}

	PersonsRepository interface {
		Saver
		Fetcher
		Finder
		Updater
		Deleter
	}
)
