package services

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

type documentoCenario struct {
	f        *fixture
	mov      *models.MovimentacaoBemPatrimonial
	origem   *models.Ator
	destino  *models.Ator
	estranho *models.Ator
	gestor   *models.Ator
}

func novoDocumentoCenario(t *testing.T) *documentoCenario {
	f := newFixture(t)
	origem := f.unidade("01.16.10.379", "EMEF Origem")
	destino := f.unidade("01.16.10.408", "EMEI Destino")
	outra := f.unidade("01.16.10.500", "CEU Outra")

	c := &documentoCenario{
		f:        f,
		origem:   f.operador("op.origem", origem),
		destino:  f.operador("op.destino", destino),
		estranho: f.operador("op.outra", outra),
		gestor:   f.gestor("gestor"),
	}
	bem := f.bemAprovado("Mesa", "123.456789012-3", origem)

	mov, err := f.movimentacoes.Criar(f.ctx, c.origem, MovimentacaoRequest{
		BemPatrimonialID: bem.ID,
		UnidadeDestinoID: destino.ID,
	})
	require.NoError(t, err)
	c.mov = mov
	return c
}

func TestDocumentoDownload(t *testing.T) {
	c := novoDocumentoCenario(t)

	for _, ator := range []*models.Ator{c.origem, c.destino, c.gestor} {
		nome, data, err := c.f.documentos.Download(c.f.ctx, ator, c.mov.ID)
		require.NoError(t, err)
		assert.Equal(t, "CIMBPM_379_408_0000001_2024.pdf", nome)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	}
}

func TestDocumentoDownloadNegado(t *testing.T) {
	c := novoDocumentoCenario(t)

	_, _, err := c.f.documentos.Download(c.f.ctx, c.estranho, c.mov.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = c.f.documentos.Download(c.f.ctx, c.gestor, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentoDownloadSemNumero(t *testing.T) {
	c := novoDocumentoCenario(t)
	c.f.tx(func(tx store.Tx) error {
		_, err := tx.LimparNumerosCIMBPM(c.f.ctx)
		return err
	})

	_, _, err := c.f.documentos.Download(c.f.ctx, c.gestor, c.mov.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentoRegeneradoQuandoAusente(t *testing.T) {
	c := novoDocumentoCenario(t)

	key := c.f.getMovimentacao(c.mov.ID).DocumentoCIMBPM
	require.NotEmpty(t, key)
	require.NoError(t, os.Remove(c.f.storage.path(key)))

	nome, data, err := c.f.documentos.Download(c.f.ctx, c.destino, c.mov.ID)
	require.NoError(t, err)
	assert.Equal(t, "CIMBPM_379_408_0000001_2024.pdf", nome)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	ok, err := c.f.storage.Exists(c.f.ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDocumentoGerarSemForcarMantemArquivo(t *testing.T) {
	c := novoDocumentoCenario(t)
	key := c.f.getMovimentacao(c.mov.ID).DocumentoCIMBPM
	require.NoError(t, c.f.storage.Put(c.f.ctx, key, []byte("%PDF-original")))

	require.NoError(t, c.f.documentos.Gerar(c.f.ctx, c.mov.ID, false))
	data, err := c.f.storage.Get(c.f.ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-original", string(data))

	require.NoError(t, c.f.documentos.Gerar(c.f.ctx, c.mov.ID, true))
	data, err = c.f.storage.Get(c.f.ctx, key)
	require.NoError(t, err)
	assert.NotEqual(t, "%PDF-original", string(data))
}

func TestRenderAceitaIncluiRecebimento(t *testing.T) {
	c := novoDocumentoCenario(t)
	_, err := c.f.movimentacoes.Aprovar(c.f.ctx, c.destino, c.mov.ID)
	require.NoError(t, err)

	mov := c.f.getMovimentacao(c.mov.ID)
	doc := NovoDocumentoCIMBPM(mov, c.f.clock)
	require.NotNil(t, doc.DataAceite)
	assert.Equal(t, "op.destino", doc.Recebimento.NomeExibicao())
	assert.Equal(t, "op.origem", doc.GeradoPor)
	require.Len(t, doc.Bens, 1)

	data, err := NewCIMBPMRenderer().Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	// a document needs both units loaded
	_, err = NewCIMBPMRenderer().Render(&DocumentoCIMBPM{Numero: "x"})
	assert.Error(t, err)
}

func TestDocumentoGerarBloqueiaAntesDeLer(t *testing.T) {
	c := novoDocumentoCenario(t)

	var mu sync.Mutex
	var calls []string
	logged := &hookedStore{
		inner: c.f.store,
		wrap:  func(tx store.Tx) store.Tx { return callLogTx{Tx: tx, mu: &mu, calls: &calls} },
	}
	documentos := NewDocumentoService(logged, c.f.storage, NewCIMBPMRenderer())
	documentos.now = c.f.now

	require.NoError(t, documentos.Gerar(c.f.ctx, c.mov.ID, true))
	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, []string{"lock", "get"}, calls[:2])
}

func TestRenderConcorrente(t *testing.T) {
	c := novoDocumentoCenario(t)
	doc := NovoDocumentoCIMBPM(c.f.getMovimentacao(c.mov.ID), c.f.clock)
	renderer := NewCIMBPMRenderer()

	const workers = 8
	results := make([][]byte, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = renderer.Render(doc)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.True(t, bytes.HasPrefix(results[i], []byte("%PDF")))
	}
}
