package services

import (
	"context"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
)

// PersonQueryService turns a PersonCriteria into a specification and runs it
// against the repository. It never writes.
type PersonQueryService struct {
	repo   ports.Finder
	mapper ports.PersonMapper
	logger logger.Logger
}

func NewPersonQueryService(repo ports.Finder, mapper ports.PersonMapper, log logger.Logger) *PersonQueryService {
	return &PersonQueryService{
		repo:   repo,
		mapper: mapper,
		logger: log,
	}
}

func (s *PersonQueryService) FindByCriteria(
	ctx context.Context,
	criteria *model.PersonCriteria,
	page model.PageRequest,
) (model.Page[model.PersonDTO], error) {
	log := s.logger.WithContext(ctx)
	log.Debug().
		Str("criteria", criteria.String()).
		Uint("page", page.Number).
		Uint("size", page.Size).
		Msg("find by criteria")

	if err := page.Validate(); err != nil {
		return model.Page[model.PersonDTO]{}, err
	}

	spec := CreateSpecification(criteria)

	query := model.NewQuery().
		Where(spec).
		OrderBy(page.Sort...).
		Paginate(page.Number, page.Size).
		Build()

	persons, err := s.repo.FindAll(ctx, query)
	if err != nil {
		return model.Page[model.PersonDTO]{}, err
	}

	total, err := s.total(ctx, criteria, page, len(persons))
	if err != nil {
		return model.Page[model.PersonDTO]{}, err
	}

	return model.Page[model.PersonDTO]{
		Content:       s.mapper.ToDTOs(persons),
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: total,
	}, nil
}

func (s *PersonQueryService) CountByCriteria(ctx context.Context, criteria *model.PersonCriteria) (int64, error) {
	log := s.logger.WithContext(ctx)
	log.Debug().
		Str("criteria", criteria.String()).
		Msg("count by criteria")

	return s.repo.Count(ctx, CreateSpecification(criteria))
}

// total derives the total from the fetched page when the page proves it is
// the last one and only issues a count query otherwise.
func (s *PersonQueryService) total(ctx context.Context, criteria *model.PersonCriteria, page model.PageRequest, fetched int) (int64, error) {
	switch {
	case page.Size == 0:
		return int64(fetched), nil
	case page.Offset() == 0 && uint(fetched) < page.Size:
		return int64(fetched), nil
	case fetched > 0 && uint(fetched) < page.Size:
		return int64(page.Offset()) + int64(fetched), nil
	}

	return s.repo.Count(ctx, CreateSpecification(criteria))
}

// CreateSpecification compiles criteria into a conjunction starting from
// match-all: the distinct modifier first, then one clause per constrained
// field in declaration order. A nil or empty criteria matches every row.
func CreateSpecification(criteria *model.PersonCriteria) model.Specification {
	spec := model.MatchAll()
	if criteria == nil {
		return spec
	}

	if distinct := criteria.Distinct(); distinct != nil {
		spec = spec.Must(model.Distinct(*distinct))
	}

	for _, field := range model.PersonFields() {
		if fieldSpec := field.Specification(criteria); fieldSpec != nil {
			spec = spec.Must(fieldSpec)
		}
	}

	return spec
}
