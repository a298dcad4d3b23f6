package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

func TestPerson_AuditAndTouch(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	p := &model.Person{Nome: "Ana"}

	p.Audit("system", created)
	require.Equal(t, "system", p.CreatedBy)
	require.Equal(t, created.UTC(), *p.CreatedDate)
	require.Equal(t, "system", *p.LastModifiedBy)

	p.Touch("admin", created.Add(time.Hour))
	require.Equal(t, "system", p.CreatedBy)
	require.Equal(t, "admin", *p.LastModifiedBy)
	require.Equal(t, created.Add(time.Hour).UTC(), *p.LastModifiedDate)
}

func TestPersonPatch_Apply(t *testing.T) {
	t.Parallel()

	nome := "Beatriz"
	dt := "1991-02-03"
	bad := "03/02/1991"

	p := &model.Person{Nome: "Bea", Cpf: "111.111.111-11", Email: "bea@example.com"}

	require.NoError(t, model.PersonPatch{Nome: &nome, DtNascimento: &dt}.Apply(p))
	require.Equal(t, "Beatriz", p.Nome)
	require.Equal(t, time.Date(1991, 2, 3, 0, 0, 0, 0, time.UTC), p.DtNascimento)
	require.Equal(t, "111.111.111-11", p.Cpf)
	require.Equal(t, "bea@example.com", p.Email)

	err := model.PersonPatch{DtNascimento: &bad}.Apply(p)
	require.ErrorIs(t, err, model.ErrInvalidCriteria)
}
