package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sme-sp/bens-fisicos-backend/internal/models"
)

func TestMemoryStoreRollbackOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.CreateUnidade(ctx, &models.UnidadeAdministrativa{Nome: "UA"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_ = s.RunInTransaction(ctx, func(tx Tx) error {
		_, total, err := tx.ListUnidades(ctx, UnidadeFiltro{})
		require.NoError(t, err)
		assert.Zero(t, total)
		return nil
	})
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var id uint
	require.NoError(t, s.RunInTransaction(ctx, func(tx Tx) error {
		b := &models.BemPatrimonial{Nome: "Mesa", Descricao: "Mesa", Quantidade: 1}
		if err := tx.CreateBem(ctx, b); err != nil {
			return err
		}
		id = b.ID
		b.Nome = "alterado sem salvar"
		return nil
	}))

	require.NoError(t, s.RunInTransaction(ctx, func(tx Tx) error {
		b, err := tx.GetBem(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Mesa", b.Nome)
		assert.Equal(t, models.StatusBemAguardandoAprovacao, b.Status)
		return nil
	}))
}

func TestMemoryStoreUniqueNumeroPatrimonial(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	numero := "123.456789012-3"

	require.NoError(t, s.RunInTransaction(ctx, func(tx Tx) error {
		return tx.CreateBem(ctx, &models.BemPatrimonial{Nome: "A", NumeroPatrimonial: &numero})
	}))

	err := s.RunInTransaction(ctx, func(tx Tx) error {
		dup := numero
		return tx.CreateBem(ctx, &models.BemPatrimonial{Nome: "B", NumeroPatrimonial: &dup})
	})
	assert.True(t, IsDuplicate(err))
}

func TestMemoryStoreSinglePendingMovimentacao(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.RunInTransaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.CreateBem(ctx, &models.BemPatrimonial{Nome: "A"}))
		require.NoError(t, tx.CreateMovimentacao(ctx, &models.MovimentacaoBemPatrimonial{BemPatrimonialID: 1}))
		return tx.CreateMovimentacao(ctx, &models.MovimentacaoBemPatrimonial{BemPatrimonialID: 1})
	})
	assert.True(t, IsDuplicate(err))
}

func TestMemoryStoreMaxSequencialCIMBPM(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	numeros := []string{"379.408.0000001.2024", "379.408.0000007.2024", "001.002.0000003.2025"}
	require.NoError(t, s.RunInTransaction(ctx, func(tx Tx) error {
		for i := range numeros {
			n := numeros[i]
			m := &models.MovimentacaoBemPatrimonial{
				BemPatrimonialID: uint(i + 1),
				Status:           models.StatusMovimentacaoAceita,
				NumeroCIMBPM:     &n,
			}
			if err := tx.CreateMovimentacao(ctx, m); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.RunInTransaction(ctx, func(tx Tx) error {
		max, err := tx.MaxSequencialCIMBPM(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, 7, max)

		max, err = tx.MaxSequencialCIMBPM(ctx, 2023)
		require.NoError(t, err)
		assert.Zero(t, max)

		cleared, err := tx.LimparNumerosCIMBPM(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, cleared)
		return nil
	}))
}

func TestMemoryStoreUsuariosAtivosPorPapel(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	ua := uint(1)
	outra := uint(2)

	require.NoError(t, s.RunInTransaction(ctx, func(tx Tx) error {
		users := []*models.Usuario{
			{Username: "op1", IsActive: true, Grupos: []string{string(models.PapelOperadorInventario)}, UnidadeAdministrativaID: &ua},
			{Username: "op2", IsActive: false, Grupos: []string{string(models.PapelOperadorInventario)}, UnidadeAdministrativaID: &ua},
			{Username: "op3", IsActive: true, Grupos: []string{string(models.PapelOperadorInventario)}, UnidadeAdministrativaID: &outra},
			{Username: "gestor", IsActive: true, Grupos: []string{string(models.PapelGestorPatrimonio)}},
		}
		for _, u := range users {
			if err := tx.CreateUsuario(ctx, u); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.RunInTransaction(ctx, func(tx Tx) error {
		ops, err := tx.ListUsuariosAtivos(ctx, models.PapelOperadorInventario, &ua)
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, "op1", ops[0].Username)

		gestores, err := tx.ListUsuariosAtivos(ctx, models.PapelGestorPatrimonio, nil)
		require.NoError(t, err)
		require.Len(t, gestores, 1)
		return nil
	}))
}
