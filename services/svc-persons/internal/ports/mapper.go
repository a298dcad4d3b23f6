package ports

import "github.com/architeacher/persons/services/svc-persons/internal/domain/model"

// PersonMapper converts between stored persons and their wire form.
type PersonMapper interface {
	ToDTO(person *model.Person) model.PersonDTO
	ToDTOs(persons []*model.Person) []model.PersonDTO
	ToEntity(dto model.PersonDTO) (*model.Person, error)
	PartialUpdate(person *model.Person, patch model.PersonPatch) error
}
