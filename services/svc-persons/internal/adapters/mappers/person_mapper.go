package mappers

import (
	"github.com/samber/lo"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

type PersonMapper struct{}

func NewPersonMapper() PersonMapper {
	return PersonMapper{}
}

func (PersonMapper) ToDTO(person *model.Person) model.PersonDTO {
	dto := model.PersonDTO{
		Foto:             person.Foto,
		FotoContentType:  person.FotoContentType,
		Nome:             person.Nome,
		DtNascimento:     person.DtNascimento.Format(model.DateLayout),
		Cpf:              person.Cpf,
		Email:            person.Email,
		CreatedBy:        person.CreatedBy,
		CreatedDate:      person.CreatedDate,
		LastModifiedBy:   person.LastModifiedBy,
		LastModifiedDate: person.LastModifiedDate,
	}

	if person.ID != 0 {
		dto.ID = lo.ToPtr(person.ID)
	}

	return dto
}

func (m PersonMapper) ToDTOs(persons []*model.Person) []model.PersonDTO {
	return lo.Map(persons, func(person *model.Person, _ int) model.PersonDTO {
		return m.ToDTO(person)
	})
}

// ToEntity ignores the audit fields of dto; they are owned by the auditor.
func (PersonMapper) ToEntity(dto model.PersonDTO) (*model.Person, error) {
	birthDate, err := dto.BirthDate()
	if err != nil {
		return nil, err
	}

	return &model.Person{
		ID:              lo.FromPtr(dto.ID),
		Foto:            dto.Foto,
		FotoContentType: dto.FotoContentType,
		Nome:            dto.Nome,
		DtNascimento:    birthDate,
		Cpf:             dto.Cpf,
		Email:           dto.Email,
	}, nil
}

func (PersonMapper) PartialUpdate(person *model.Person, patch model.PersonPatch) error {
	return patch.Apply(person)
}
