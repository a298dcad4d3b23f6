package model

import "time"

// Person is a row of the pessoa table.
type Person struct {
	ID               int64
	Foto             []byte
	FotoContentType  *string
	Nome             string
	DtNascimento     time.Time
	Cpf              string
	Email            string
	CreatedBy        string
	CreatedDate      *time.Time
	LastModifiedBy   *string
	LastModifiedDate *time.Time
}

// Audit stamps creation metadata on a new person.
func (p *Person) Audit(login string, now time.Time) {
	now = now.UTC()

	p.CreatedBy = login
	p.CreatedDate = &now
	p.LastModifiedBy = &login
	p.LastModifiedDate = &now
}

// Touch stamps modification metadata on an existing person.
func (p *Person) Touch(login string, now time.Time) {
	now = now.UTC()

	p.LastModifiedBy = &login
	p.LastModifiedDate = &now
}
