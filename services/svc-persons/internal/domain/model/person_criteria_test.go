package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

func populatedCriteria() *model.PersonCriteria {
	c := model.NewPersonCriteria()
	c.EnsureID().SetGreaterThan(1)
	c.EnsureNome().SetContains("An")
	c.EnsureDtNascimento().SetLessThan(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	c.EnsureCpf().SetIn("111.111.111-11", "222.222.222-22")
	c.EnsureEmail().SetSpecified(true)
	c.EnsureCreatedBy().SetEquals("system")
	c.EnsureCreatedDate().SetGreaterThanOrEqual(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	c.EnsureLastModifiedBy().SetNotEquals("admin")
	c.EnsureLastModifiedDate().SetLessThanOrEqual(time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
	c.SetDistinct(false)

	return c
}

func TestPersonCriteria_NewIsUnconstrained(t *testing.T) {
	t.Parallel()

	c := model.NewPersonCriteria()

	require.Nil(t, c.ID())
	require.Nil(t, c.Nome())
	require.Nil(t, c.LastModifiedDate())
	require.Nil(t, c.Distinct())
	require.Equal(t, "PersonCriteria{}", c.String())
	require.True(t, c.Equal(&model.PersonCriteria{}))
}

func TestPersonCriteria_ReadAccessorDoesNotAllocate(t *testing.T) {
	t.Parallel()

	c := model.NewPersonCriteria()

	_ = c.Nome()
	require.Nil(t, c.Nome())

	c.EnsureNome().SetEquals("Ana")
	require.NotNil(t, c.Nome())
	require.Same(t, c.Nome(), c.EnsureNome())
}

func TestPersonCriteria_Copy(t *testing.T) {
	t.Parallel()

	original := populatedCriteria()
	clone := original.Copy()

	require.True(t, original.Equal(clone))
	require.Equal(t, original.String(), clone.String())
	require.Equal(t, original.Hash(), clone.Hash())

	clone.EnsureNome().SetContains("Be")
	clone.Cpf().In[0] = "000.000.000-00"
	clone.SetDistinct(true)

	require.Equal(t, "An", *original.Nome().Contains)
	require.Equal(t, "111.111.111-11", original.Cpf().In[0])
	require.False(t, *original.Distinct())
	require.False(t, original.Equal(clone))

	original.EnsureID().SetGreaterThan(100)
	require.Equal(t, int64(1), *clone.ID().GreaterThan)
}

func TestPersonCriteria_DistinctIsTriState(t *testing.T) {
	t.Parallel()

	unset := model.NewPersonCriteria()

	withFalse := model.NewPersonCriteria()
	withFalse.SetDistinct(false)

	withTrue := model.NewPersonCriteria()
	withTrue.SetDistinct(true)

	require.False(t, unset.Equal(withFalse))
	require.False(t, withFalse.Equal(withTrue))
	require.NotNil(t, withFalse.Copy().Distinct())
	require.False(t, *withFalse.Copy().Distinct())
	require.Equal(t, "PersonCriteria{distinct=false}", withFalse.String())
	require.Equal(t, "PersonCriteria{distinct=true}", withTrue.String())
}

func TestPersonCriteria_EqualMatchesString(t *testing.T) {
	t.Parallel()

	build := func(mutate func(c *model.PersonCriteria)) *model.PersonCriteria {
		c := model.NewPersonCriteria()
		mutate(c)

		return c
	}

	variants := []*model.PersonCriteria{
		model.NewPersonCriteria(),
		populatedCriteria(),
		build(func(c *model.PersonCriteria) { c.EnsureNome() }),
		build(func(c *model.PersonCriteria) { c.EnsureNome().SetEquals("Ana") }),
		build(func(c *model.PersonCriteria) { c.EnsureCpf().SetEquals("Ana") }),
		build(func(c *model.PersonCriteria) { c.EnsureNome().SetIn() }),
		build(func(c *model.PersonCriteria) { c.EnsureID().SetEquals(1) }),
		build(func(c *model.PersonCriteria) { c.EnsureID().SetGreaterThan(1) }),
		build(func(c *model.PersonCriteria) { c.SetDistinct(true) }),
		build(func(c *model.PersonCriteria) {
			c.EnsureNome().SetEquals("Ana")
			c.EnsureNome().SetContains("B")
		}),
		build(func(c *model.PersonCriteria) { c.EnsureNome().SetEquals("Ana, contains=B") }),
		build(func(c *model.PersonCriteria) { c.EnsureNome().SetEquals(`Ana", contains="B`) }),
		build(func(c *model.PersonCriteria) { c.EnsureNome().SetIn("Ana", "Bea") }),
		build(func(c *model.PersonCriteria) { c.EnsureNome().SetIn("Ana, Bea") }),
		build(func(c *model.PersonCriteria) { c.EnsureNome().SetIn("Ana]", "[Bea") }),
		build(func(c *model.PersonCriteria) {
			c.EnsureNome().SetEquals("x")
			c.EnsureCpf().SetEquals("1")
		}),
		build(func(c *model.PersonCriteria) { c.EnsureNome().SetEquals(`x"}, cpf=StringFilter{equals="1`) }),
		nil,
	}

	for i, a := range variants {
		for j, b := range variants {
			equal := a.Equal(b)

			require.Equal(t, i == j, equal, "variants %d and %d", i, j)
			require.Equal(t, equal, a.String() == b.String(), "variants %d and %d", i, j)
			require.Equal(t, equal, a.Hash() == b.Hash(), "variants %d and %d", i, j)
		}
	}
}

func TestPersonCriteria_String(t *testing.T) {
	t.Parallel()

	c := model.NewPersonCriteria()
	c.SetDistinct(true)
	c.EnsureLastModifiedBy().SetSpecified(false)
	c.EnsureID().SetIn(1, 2)

	require.Equal(t,
		"PersonCriteria{id=RangeFilter{in=[1, 2]}, lastModifiedBy=StringFilter{specified=false}, distinct=true}",
		c.String(),
	)
}
