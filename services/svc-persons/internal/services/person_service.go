package services

import (
	"context"
	"errors"

	"github.com/architeacher/persons/pkg/idempotency"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
)

// CountInvalidator is the part of the count cache writes depend on.
type CountInvalidator interface {
	Invalidate(ctx context.Context) error
}

type PersonService struct {
	repo        ports.PersonsRepository
	mapper      ports.PersonMapper
	auditor     ports.Auditor
	invalidator CountInvalidator
	logger      logger.Logger
}

// NewPersonService accepts a nil invalidator when counts are not cached.
func NewPersonService(
	repo ports.PersonsRepository,
	mapper ports.PersonMapper,
	auditor ports.Auditor,
	invalidator CountInvalidator,
	log logger.Logger,
) *PersonService {
	return &PersonService{
		repo:        repo,
		mapper:      mapper,
		auditor:     auditor,
		invalidator: invalidator,
		logger:      log,
	}
}

func (s *PersonService) Save(ctx context.Context, dto model.PersonDTO) (model.PersonDTO, error) {
	log := s.logger.WithContext(ctx)

	event := log.Debug().Str("nome", dto.Nome)
	if key, ok := idempotency.FromContext(ctx); ok {
		event = event.Str("idempotency_key", key)
	}
	event.Msg("request to save person")

	person, err := s.mapper.ToEntity(dto)
	if err != nil {
		return model.PersonDTO{}, err
	}

	person.ID = 0
	person.Audit(s.auditor.CurrentLogin(ctx), s.auditor.Now())

	id, err := s.repo.Create(ctx, person)
	if err != nil {
		return model.PersonDTO{}, err
	}

	person.ID = id
	s.invalidateCounts(ctx)

	return s.mapper.ToDTO(person), nil
}

// Update replaces every mutable field of an existing person.
func (s *PersonService) Update(ctx context.Context, dto model.PersonDTO) (model.PersonDTO, error) {
	if dto.ID == nil {
		return model.PersonDTO{}, model.ErrInvalidPersonID
	}

	log := s.logger.WithContext(ctx)
	log.Debug().Int64("id", *dto.ID).Msg("request to update person")

	person, err := s.mapper.ToEntity(dto)
	if err != nil {
		return model.PersonDTO{}, err
	}

	existing, err := s.repo.FetchByID(ctx, person.ID)
	if err != nil {
		return model.PersonDTO{}, err
	}

	person.CreatedBy = existing.CreatedBy
	person.CreatedDate = existing.CreatedDate

	return s.write(ctx, person)
}

// PartialUpdate merges the set fields of patch into the stored person and
// returns model.ErrPersonNotFound when it no longer exists.
func (s *PersonService) PartialUpdate(ctx context.Context, id int64, patch model.PersonPatch) (model.PersonDTO, error) {
	log := s.logger.WithContext(ctx)
	log.Debug().Int64("id", id).Msg("request to partially update person")

	person, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return model.PersonDTO{}, err
	}

	if err := s.mapper.PartialUpdate(person, patch); err != nil {
		return model.PersonDTO{}, err
	}

	return s.write(ctx, person)
}

func (s *PersonService) FindOne(ctx context.Context, id int64) (model.PersonDTO, error) {
	log := s.logger.WithContext(ctx)
	log.Debug().Int64("id", id).Msg("request to get person")

	person, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return model.PersonDTO{}, err
	}

	return s.mapper.ToDTO(person), nil
}

// Delete succeeds for an id that is already gone.
func (s *PersonService) Delete(ctx context.Context, id int64) error {
	log := s.logger.WithContext(ctx)
	log.Debug().Int64("id", id).Msg("request to delete person")

	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, model.ErrPersonNotFound) {
		return err
	}

	s.invalidateCounts(ctx)

	return nil
}

func (s *PersonService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *PersonService) write(ctx context.Context, person *model.Person) (model.PersonDTO, error) {
	person.Touch(s.auditor.CurrentLogin(ctx), s.auditor.Now())

	if err := s.repo.Update(ctx, person); err != nil {
		return model.PersonDTO{}, err
	}

	s.invalidateCounts(ctx)

	return s.mapper.ToDTO(person), nil
}

// invalidateCounts never fails the write that triggered it; cached counts
// then expire on their TTL.
func (s *PersonService) invalidateCounts(ctx context.Context) {
	if s.invalidator == nil {
		return
	}

	if err := s.invalidator.Invalidate(ctx); err != nil {
		log := s.logger.WithContext(ctx)
		log.Warn().Err(err).Msg("failed to invalidate cached counts")
	}
}
