package ports

import (
	"context"
	"time"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

type (
	// PersonQueryService compiles criteria into specifications and runs them.
	PersonQueryService interface {
		FindByCriteria(ctx context.Context, criteria *model.PersonCriteria, page model.PageRequest) (model.Page[model.PersonDTO], error)
		CountByCriteria(ctx context.Context, criteria *model.PersonCriteria) (int64, error)
	}

	PersonService interface {
		Save(ctx context.Context, dto model.PersonDTO) (model.PersonDTO, error)
		Update(ctx context.Context, dto model.PersonDTO) (model.PersonDTO, error)
		PartialUpdate(ctx context.Context, id int64, patch model.PersonPatch) (model.PersonDTO, error)
		FindOne(ctx context.Context, id int64) (model.PersonDTO, error)
		Delete(ctx context.Context, id int64) error
		Exists(ctx context.Context, id int64) (bool, error)
	}

	// Auditor supplies who and when for audit columns.
	Auditor interface {
		CurrentLogin(ctx context.Context) string
		Now() time.Time
	}
)
