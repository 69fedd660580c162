package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

type MovimentacaoTestSuite struct {
	suite.Suite
	f *fixture

	origem  *models.UnidadeAdministrativa
	destino *models.UnidadeAdministrativa

	gestor          *models.Ator
	operadorOrigem  *models.Ator
	operadorDestino *models.Ator
	bem             *models.BemPatrimonial
}

func (suite *MovimentacaoTestSuite) SetupTest() {
	f := newFixture(suite.T())
	suite.f = f

	suite.origem = f.unidade("01.16.10.379", "EMEF Origem")
	suite.destino = f.unidade("01.16.10.408", "EMEI Destino")
	suite.gestor = f.gestor("gestor")
	suite.operadorOrigem = f.operador("op.origem", suite.origem)
	suite.operadorDestino = f.operador("op.destino", suite.destino)
	suite.bem = f.bemAprovado("Mesa", "123.456789012-3", suite.origem)
}

func (suite *MovimentacaoTestSuite) solicitar(ator *models.Ator, bemID uint) *models.MovimentacaoBemPatrimonial {
	mov, err := suite.f.movimentacoes.Criar(suite.f.ctx, ator, MovimentacaoRequest{
		BemPatrimonialID: bemID,
		UnidadeDestinoID: suite.destino.ID,
		Observacao:       "  troca de sala  ",
	})
	suite.Require().NoError(err)
	return mov
}

func (suite *MovimentacaoTestSuite) TestCriarBloqueiaBem() {
	mov := suite.solicitar(suite.operadorOrigem, suite.bem.ID)

	assert.Equal(suite.T(), models.StatusMovimentacaoEnviada, mov.Status)
	assert.Equal(suite.T(), "troca de sala", mov.Observacao)
	assert.Equal(suite.T(), suite.origem.ID, mov.UnidadeOrigemID)
	assert.Equal(suite.T(), "379.408.0000001.2024", mov.Numero())

	bem := suite.f.getBem(suite.bem.ID)
	assert.Equal(suite.T(), models.StatusBemBloqueado, bem.Status)
	assert.Equal(suite.T(), suite.origem.ID, *bem.UnidadeAdministrativaID)

	historico := suite.f.historico(suite.bem.ID)
	require.NotEmpty(suite.T(), historico)
	assert.Equal(suite.T(), "Bloqueado pela movimentação #1.", historico[0].Observacao)

	// the document is generated right after the commit
	stored := suite.f.getMovimentacao(mov.ID)
	assert.NotEmpty(suite.T(), stored.DocumentoCIMBPM)

	// destination operators are asked to accept
	last := suite.f.mailer.last()
	assert.Equal(suite.T(), AssuntoMovimentacaoAceite, last.Subject)
	assert.Equal(suite.T(), []string{"op.destino@sme.test"}, last.To)
}

func (suite *MovimentacaoTestSuite) TestCriarComPendenteExistente() {
	suite.solicitar(suite.operadorOrigem, suite.bem.ID)

	_, err := suite.f.movimentacoes.Criar(suite.f.ctx, suite.gestor, MovimentacaoRequest{
		BemPatrimonialID: suite.bem.ID,
		UnidadeDestinoID: suite.destino.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrStateConflict)
	assert.Equal(suite.T(), i18n.KeyMovimentacaoPendenteExistente, errorKey(err))
}

func (suite *MovimentacaoTestSuite) TestNumeroCIMBPMSequencialPorAno() {
	outro := suite.f.bemAprovado("Cadeira", "", suite.origem)
	terceiro := suite.f.bemAprovado("Armário", "", suite.origem)

	primeiro := suite.solicitar(suite.operadorOrigem, suite.bem.ID)
	segundo := suite.solicitar(suite.operadorOrigem, outro.ID)
	assert.Equal(suite.T(), "379.408.0000001.2024", primeiro.Numero())
	assert.Equal(suite.T(), "379.408.0000002.2024", segundo.Numero())

	suite.f.clock = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	novoAno := suite.solicitar(suite.gestor, terceiro.ID)
	assert.Equal(suite.T(), "379.408.0000001.2025", novoAno.Numero())
}

func (suite *MovimentacaoTestSuite) TestCriarValidacoes() {
	ctx := suite.f.ctx
	inativa := &models.UnidadeAdministrativa{Nome: "Fechada", Status: models.StatusUnidadeInativa}
	suite.f.tx(func(tx store.Tx) error { return tx.CreateUnidade(ctx, inativa) })

	pendente := suite.f.bemAprovado("Lousa", "", suite.origem)
	suite.f.tx(func(tx store.Tx) error {
		b, err := tx.LockBem(ctx, pendente.ID)
		if err != nil {
			return err
		}
		b.Status = models.StatusBemAguardandoAprovacao
		return tx.SaveBem(ctx, b)
	})

	cases := []struct {
		name  string
		req   MovimentacaoRequest
		field string
	}{
		{"bem inexistente", MovimentacaoRequest{BemPatrimonialID: 999, UnidadeDestinoID: suite.destino.ID}, "bem_patrimonial_id"},
		{"bem nao aprovado", MovimentacaoRequest{BemPatrimonialID: pendente.ID, UnidadeDestinoID: suite.destino.ID}, "bem_patrimonial_id"},
		{"mesma unidade", MovimentacaoRequest{BemPatrimonialID: suite.bem.ID, UnidadeDestinoID: suite.origem.ID}, "unidade_destino_id"},
		{"destino inativo", MovimentacaoRequest{BemPatrimonialID: suite.bem.ID, UnidadeDestinoID: inativa.ID}, "unidade_destino_id"},
		{"destino inexistente", MovimentacaoRequest{BemPatrimonialID: suite.bem.ID, UnidadeDestinoID: 999}, "unidade_destino_id"},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.f.movimentacoes.Criar(ctx, suite.gestor, tc.req)
			assert.ErrorIs(suite.T(), err, ErrValidation)
			fields := validationFields(err)
			if fields == nil {
				var svcErr *Error
				require.True(suite.T(), errors.As(err, &svcErr))
				fields = []string{svcErr.Field}
			}
			assert.Contains(suite.T(), fields, tc.field)
		})
	}

	assert.Equal(suite.T(), models.StatusBemAprovado, suite.f.getBem(suite.bem.ID).Status)
}

func (suite *MovimentacaoTestSuite) TestCriarForaDaUnidade() {
	_, err := suite.f.movimentacoes.Criar(suite.f.ctx, suite.operadorDestino, MovimentacaoRequest{
		BemPatrimonialID: suite.bem.ID,
		UnidadeDestinoID: suite.destino.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	semPapel := suite.f.usuario("sem.papel", nil)
	_, err = suite.f.movimentacoes.Criar(suite.f.ctx, semPapel, MovimentacaoRequest{
		BemPatrimonialID: suite.bem.ID,
		UnidadeDestinoID: suite.destino.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *MovimentacaoTestSuite) TestAprovarPeloDestino() {
	mov := suite.solicitar(suite.operadorOrigem, suite.bem.ID)

	aceita, err := suite.f.movimentacoes.Aprovar(suite.f.ctx, suite.operadorDestino, mov.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.StatusMovimentacaoAceita, aceita.Status)
	require.NotNil(suite.T(), aceita.AprovadoPorID)
	assert.Equal(suite.T(), suite.operadorDestino.UsuarioID, *aceita.AprovadoPorID)

	bem := suite.f.getBem(suite.bem.ID)
	assert.Equal(suite.T(), models.StatusBemAprovado, bem.Status)
	assert.Equal(suite.T(), suite.destino.ID, *bem.UnidadeAdministrativaID)
	assert.Equal(suite.T(), "Desbloqueado: movimentação #1 aceita.", suite.f.historico(bem.ID)[0].Observacao)

	last := suite.f.mailer.last()
	assert.Equal(suite.T(), AssuntoMovimentacaoAceita, last.Subject)
	assert.Equal(suite.T(), []string{"op.origem@sme.test"}, last.To)
}

func (suite *MovimentacaoTestSuite) TestAprovarNaoPermitido() {
	mov := suite.solicitar(suite.operadorOrigem, suite.bem.ID)
	colega := suite.f.operador("op.origem2", suite.origem)

	_, err := suite.f.movimentacoes.Aprovar(suite.f.ctx, suite.operadorOrigem, mov.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
	assert.Equal(suite.T(), i18n.KeyMovimentacaoProprioSolicitante, errorKey(err))

	_, err = suite.f.movimentacoes.Aprovar(suite.f.ctx, colega, mov.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
	assert.Equal(suite.T(), i18n.KeyMovimentacaoOperadorOrigem, errorKey(err))

	_, err = suite.f.movimentacoes.Cancelar(suite.f.ctx, suite.operadorDestino, mov.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	assert.Equal(suite.T(), models.StatusMovimentacaoEnviada, suite.f.getMovimentacao(mov.ID).Status)
	assert.Equal(suite.T(), models.StatusBemBloqueado, suite.f.getBem(suite.bem.ID).Status)
}

func (suite *MovimentacaoTestSuite) TestGestorNaoAprovaPropriaSolicitacao() {
	mov := suite.solicitar(suite.gestor, suite.bem.ID)

	_, err := suite.f.movimentacoes.Aprovar(suite.f.ctx, suite.gestor, mov.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *MovimentacaoTestSuite) TestRejeitarMantemUnidade() {
	mov := suite.solicitar(suite.operadorOrigem, suite.bem.ID)

	rejeitada, err := suite.f.movimentacoes.Rejeitar(suite.f.ctx, suite.operadorDestino, mov.ID, " sem espaço ")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StatusMovimentacaoRejeitada, rejeitada.Status)

	bem := suite.f.getBem(suite.bem.ID)
	assert.Equal(suite.T(), models.StatusBemAprovado, bem.Status)
	assert.Equal(suite.T(), suite.origem.ID, *bem.UnidadeAdministrativaID)
	assert.Equal(suite.T(), "Desbloqueado: movimentação #1 rejeitada. sem espaço", suite.f.historico(bem.ID)[0].Observacao)

	last := suite.f.mailer.last()
	assert.Equal(suite.T(), AssuntoMovimentacaoRejeit, last.Subject)
	assert.Equal(suite.T(), "sem espaço", last.Context["body"])
}

func (suite *MovimentacaoTestSuite) TestTransicaoIdempotente() {
	mov := suite.solicitar(suite.operadorOrigem, suite.bem.ID)

	cancelada, err := suite.f.movimentacoes.Cancelar(suite.f.ctx, suite.gestor, mov.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StatusMovimentacaoCancelada, cancelada.Status)
	assert.Equal(suite.T(), AssuntoMovimentacaoCancel, suite.f.mailer.last().Subject)
	enviados := len(suite.f.mailer.subjects())

	again, err := suite.f.movimentacoes.Aprovar(suite.f.ctx, suite.operadorDestino, mov.ID)
	assert.ErrorIs(suite.T(), err, ErrJaFinalizada)
	require.NotNil(suite.T(), again)
	assert.Equal(suite.T(), models.StatusMovimentacaoCancelada, again.Status)
	assert.Nil(suite.T(), again.AprovadoPorID)

	// finished movements answer before any permission check
	_, err = suite.f.movimentacoes.Cancelar(suite.f.ctx, suite.operadorDestino, mov.ID)
	assert.ErrorIs(suite.T(), err, ErrJaFinalizada)

	bem := suite.f.getBem(suite.bem.ID)
	assert.Equal(suite.T(), suite.origem.ID, *bem.UnidadeAdministrativaID)
	assert.Equal(suite.T(), models.StatusBemAprovado, bem.Status)
	assert.Len(suite.T(), suite.f.mailer.subjects(), enviados)
}

func (suite *MovimentacaoTestSuite) TestAprovarComDestinoInativado() {
	mov := suite.solicitar(suite.operadorOrigem, suite.bem.ID)
	suite.f.tx(func(tx store.Tx) error {
		u, err := tx.GetUnidade(suite.f.ctx, suite.destino.ID)
		if err != nil {
			return err
		}
		u.Status = models.StatusUnidadeInativa
		return tx.SaveUnidade(suite.f.ctx, u)
	})

	_, err := suite.f.movimentacoes.Aprovar(suite.f.ctx, suite.operadorDestino, mov.ID)
	assert.ErrorIs(suite.T(), err, ErrValidation)
	assert.Contains(suite.T(), validationFields(err), "unidade_destino_id")

	// cancelling still works
	_, err = suite.f.movimentacoes.Cancelar(suite.f.ctx, suite.operadorOrigem, mov.ID)
	assert.NoError(suite.T(), err)
}

func (suite *MovimentacaoTestSuite) TestExecutarLote() {
	segundo := suite.f.bemAprovado("Cadeira", "", suite.origem)
	terceiro := suite.f.bemAprovado("Armário", "", suite.origem)

	m1 := suite.solicitar(suite.operadorOrigem, suite.bem.ID)
	m2 := suite.solicitar(suite.operadorOrigem, segundo.ID)
	m3 := suite.solicitar(suite.operadorOrigem, terceiro.ID)
	_, err := suite.f.movimentacoes.Cancelar(suite.f.ctx, suite.operadorOrigem, m3.ID)
	suite.Require().NoError(err)

	resumo := suite.f.movimentacoes.ExecutarLote(suite.f.ctx, suite.operadorDestino, AcaoAprovar,
		[]uint{m1.ID, m2.ID, m3.ID, m1.ID, 999}, "")

	assert.Equal(suite.T(), 2, resumo.Sucesso)
	assert.Equal(suite.T(), 1, resumo.Ignorados)
	assert.Equal(suite.T(), 1, resumo.Falhas)
	assert.Len(suite.T(), resumo.Itens, 4)
	assert.Len(suite.T(), resumo.Mensagens(i18n.DefaultLang), 2)
	assert.Equal(suite.T(), "Processadas: 2 com sucesso, 1 com falha, 1 ignoradas.", resumo.Resumo(i18n.DefaultLang))
	assert.Equal(suite.T(), "Processed: 2 succeeded, 1 failed, 1 skipped.", resumo.Resumo("en"))

	assert.Equal(suite.T(), models.StatusMovimentacaoAceita, suite.f.getMovimentacao(m1.ID).Status)
	assert.Equal(suite.T(), models.StatusMovimentacaoAceita, suite.f.getMovimentacao(m2.ID).Status)
}

func (suite *MovimentacaoTestSuite) TestListarOperadorVeApenasSuaUnidade() {
	outra := suite.f.unidade("01.16.10.500", "CEU Outra")
	alheio := suite.f.bemAprovado("Projetor", "", outra)
	suite.solicitar(suite.operadorOrigem, suite.bem.ID)
	_, err := suite.f.movimentacoes.Criar(suite.f.ctx, suite.gestor, MovimentacaoRequest{
		BemPatrimonialID: alheio.ID,
		UnidadeDestinoID: suite.origem.ID,
	})
	suite.Require().NoError(err)

	movs, total, err := suite.f.movimentacoes.Listar(suite.f.ctx, suite.operadorDestino, store.MovimentacaoFiltro{})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 1, total)
	assert.Equal(suite.T(), suite.bem.ID, movs[0].BemPatrimonialID)

	_, total, err = suite.f.movimentacoes.Listar(suite.f.ctx, suite.gestor, store.MovimentacaoFiltro{})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 2, total)

	_, err = suite.f.movimentacoes.Obter(suite.f.ctx, suite.operadorDestino, 2)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *MovimentacaoTestSuite) TestNumerarRetroativo() {
	segundo := suite.f.bemAprovado("Cadeira", "", suite.origem)
	m1 := suite.solicitar(suite.operadorOrigem, suite.bem.ID)
	suite.f.clock = suite.f.clock.Add(time.Hour)
	m2 := suite.solicitar(suite.operadorOrigem, segundo.ID)

	resumo, err := suite.f.movimentacoes.NumerarRetroativo(suite.f.ctx, false, true)
	suite.Require().NoError(err)
	assert.Zero(suite.T(), resumo.Pendentes)

	// dry-run never clears
	resumo, err = suite.f.movimentacoes.NumerarRetroativo(suite.f.ctx, true, true)
	suite.Require().NoError(err)
	assert.Zero(suite.T(), resumo.Limpos)
	assert.Zero(suite.T(), resumo.Pendentes)
	assert.Equal(suite.T(), "379.408.0000002.2024", suite.f.getMovimentacao(m2.ID).Numero())

	suite.f.tx(func(tx store.Tx) error {
		_, err := tx.LimparNumerosCIMBPM(suite.f.ctx)
		return err
	})
	resumo, err = suite.f.movimentacoes.NumerarRetroativo(suite.f.ctx, false, true)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 2, resumo.Pendentes)
	assert.Zero(suite.T(), resumo.Processados)
	assert.Empty(suite.T(), suite.f.getMovimentacao(m1.ID).Numero())

	resumo, err = suite.f.movimentacoes.NumerarRetroativo(suite.f.ctx, true, false)
	suite.Require().NoError(err)
	assert.Zero(suite.T(), resumo.Limpos)
	assert.Equal(suite.T(), 2, resumo.Processados)
	assert.Empty(suite.T(), resumo.Erros)
	assert.Equal(suite.T(), "379.408.0000001.2024", suite.f.getMovimentacao(m1.ID).Numero())
	assert.Equal(suite.T(), "379.408.0000002.2024", suite.f.getMovimentacao(m2.ID).Numero())

	resumo, err = suite.f.movimentacoes.NumerarRetroativo(suite.f.ctx, true, false)
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 2, resumo.Limpos)
	assert.Equal(suite.T(), 2, resumo.Processados)
}

func TestMovimentacaoTestSuite(t *testing.T) {
	suite.Run(t, new(MovimentacaoTestSuite))
}
