package model

import (
	"time"
)

type (
	// PersonDTO is the wire representation of a person. Dates travel as
	// ISO strings and audit fields are read only.
	PersonDTO struct {
		ID               *int64     `json:"id"`
		Foto             []byte     `json:"foto,omitempty"`
		FotoContentType  *string    `json:"fotoContentType,omitempty" validate:"required_with=Foto,omitempty,max=255"`
		Nome             string     `json:"nome" validate:"required,min=3,max=510"`
		DtNascimento     string     `json:"dtNascimento" validate:"required,datetime=2006-01-02"`
		Cpf              string     `json:"cpf" validate:"required,cpf"`
		Email            string     `json:"email" validate:"required,max=255,person_email"`
		CreatedBy        string     `json:"createdBy,omitempty"`
		CreatedDate      *time.Time `json:"createdDate,omitempty"`
		LastModifiedBy   *string    `json:"lastModifiedBy,omitempty"`
		LastModifiedDate *time.Time `json:"lastModifiedDate,omitempty"`
	}

	// PersonPatch carries a merge patch: nil fields are left untouched.
	PersonPatch struct {
		ID              *int64  `json:"id"`
		Foto            []byte  `json:"foto,omitempty"`
		FotoContentType *string `json:"fotoContentType,omitempty" validate:"omitempty,max=255"`
		Nome            *string `json:"nome,omitempty" validate:"omitempty,min=3,max=510"`
		DtNascimento    *string `json:"dtNascimento,omitempty" validate:"omitempty,datetime=2006-01-02"`
		Cpf             *string `json:"cpf,omitempty" validate:"omitempty,cpf"`
		Email           *string `json:"email,omitempty" validate:"omitempty,max=255,person_email"`
	}
)

// Apply merges the set fields of the patch into p.
func (patch PersonPatch) Apply(p *Person) error {
	if patch.Foto != nil {
		p.Foto = patch.Foto
	}

	if patch.FotoContentType != nil {
		p.FotoContentType = patch.FotoContentType
	}

	if patch.Nome != nil {
		p.Nome = *patch.Nome
	}

	if patch.DtNascimento != nil {
		dt, err := parseDate(*patch.DtNascimento)
		if err != nil {
			return &BindingError{Parameter: "dtNascimento", Value: *patch.DtNascimento, Reason: err.Error()}
		}

		p.DtNascimento = dt
	}

	if patch.Cpf != nil {
		p.Cpf = *patch.Cpf
	}

	if patch.Email != nil {
		p.Email = *patch.Email
	}

	return nil
}

// BirthDate parses DtNascimento as a UTC calendar date.
func (dto PersonDTO) BirthDate() (time.Time, error) {
	dt, err := parseDate(dto.DtNascimento)
	if err != nil {
		return time.Time{}, &BindingError{Parameter: "dtNascimento", Value: dto.DtNascimento, Reason: err.Error()}
	}

	return dt, nil
}
