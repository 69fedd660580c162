package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

func TestUnidadeCriarECodigoDuplicado(t *testing.T) {
	f := newFixture(t)
	gestor := f.gestor("gestor")

	u, err := f.unidades.Criar(f.ctx, gestor, UnidadeRequest{Codigo: " 01.16.10.379 ", Sigla: "EMEF", Nome: "EMEF Centro"})
	require.NoError(t, err)
	assert.Equal(t, "01.16.10.379", u.CodigoOuVazio())
	assert.Equal(t, models.StatusUnidadeAtiva, u.Status)

	_, err = f.unidades.Criar(f.ctx, gestor, UnidadeRequest{Codigo: "01.16.10.379", Nome: "Outra"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, i18n.KeyUnidadeCodigoDuplicado, errorKey(err))

	// units without a code never collide
	_, err = f.unidades.Criar(f.ctx, gestor, UnidadeRequest{Nome: "Sem código A"})
	require.NoError(t, err)
	_, err = f.unidades.Criar(f.ctx, gestor, UnidadeRequest{Nome: "Sem código B"})
	require.NoError(t, err)
}

func TestUnidadeOperadorNaoAltera(t *testing.T) {
	f := newFixture(t)
	u := f.unidade("01.16.10.379", "EMEF Centro")
	operador := f.operador("operador", u)

	_, err := f.unidades.Criar(f.ctx, operador, UnidadeRequest{Nome: "Nova"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.unidades.Atualizar(f.ctx, operador, u.ID, UnidadeRequest{Nome: "Renomeada"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.unidades.Inativar(f.ctx, operador, u.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUnidadePodeInativar(t *testing.T) {
	f := newFixture(t)
	gestor := f.gestor("gestor")
	vazia := f.unidade("01.16.10.100", "Vazia")
	ocupada := f.unidade("01.16.10.200", "Ocupada")
	f.bemAprovado("Mesa", "", ocupada)

	f.tx(func(tx store.Tx) error {
		ok, err := PodeInativar(f.ctx, tx, vazia.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = PodeInativar(f.ctx, tx, ocupada.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})

	_, err := f.unidades.Inativar(f.ctx, gestor, ocupada.ID)
	assert.ErrorIs(t, err, ErrValidation)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "status", svcErr.Field)

	inativada, err := f.unidades.Inativar(f.ctx, gestor, vazia.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnidadeInativa, inativada.Status)

	ativada, err := f.unidades.Ativar(f.ctx, gestor, vazia.ID)
	require.NoError(t, err)
	assert.True(t, ativada.Ativa())

	_, err = f.unidades.Inativar(f.ctx, gestor, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnidadeInativaRecusaNovosBens(t *testing.T) {
	f := newFixture(t)
	gestor := f.gestor("gestor")
	u := f.unidade("01.16.10.100", "Vazia")
	_, err := f.unidades.Inativar(f.ctx, gestor, u.ID)
	require.NoError(t, err)

	unidadeID := u.ID
	_, err = f.bens.Criar(f.ctx, gestor, BemRequest{
		Nome:                    "Mesa",
		Descricao:               "Mesa",
		UnidadeAdministrativaID: &unidadeID,
		SemNumeracao:            true,
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, validationFields(err), "unidade_administrativa_id")
}
