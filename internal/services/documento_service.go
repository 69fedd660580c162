// internal/services/documento_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

type DocumentoService struct {
	store    store.Store
	storage  DocumentStorage
	renderer *CIMBPMRenderer
	now      func() time.Time
}

func NewDocumentoService(st store.Store, storage DocumentStorage, renderer *CIMBPMRenderer) *DocumentoService {
	return &DocumentoService{
		store:    st,
		storage:  storage,
		renderer: renderer,
		now:      time.Now,
	}
}

// Gerar renders and stores the CIMBPM of a numbered movement. Without force
// an already stored document is kept. The movement row stays locked until
// the document is stored, so concurrent generations run one after another.
func (s *DocumentoService) Gerar(ctx context.Context, movimentacaoID uint, force bool) error {
	return s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		locked, err := tx.LockMovimentacao(ctx, movimentacaoID)
		if err != nil {
			return err
		}
		mov, err := tx.GetMovimentacao(ctx, locked.ID)
		if err != nil {
			return err
		}
		if mov.Numero() == "" {
			return fmt.Errorf("movimentacao %d has no CIMBPM number", mov.ID)
		}

		if mov.DocumentoCIMBPM != "" && !force {
			ok, err := s.storage.Exists(ctx, mov.DocumentoCIMBPM)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
		}

		data, err := s.renderer.Render(NovoDocumentoCIMBPM(mov, s.now()))
		if err != nil {
			return err
		}

		key := mov.DocumentoCIMBPM
		if key == "" {
			key = ChaveDocumento(mov.Numero(), s.now())
		}
		if err := s.storage.Put(ctx, key, data); err != nil {
			return fmt.Errorf("store cimbpm %s: %w", mov.Numero(), err)
		}

		if key == locked.DocumentoCIMBPM {
			return nil
		}
		locked.DocumentoCIMBPM = key
		return tx.SaveMovimentacao(ctx, locked)
	})
}

// gerarEmSegundoPlano is used after commits, where a failure only means the
// document is rebuilt on download.
func (s *DocumentoService) gerarEmSegundoPlano(movimentacaoID uint, force bool) {
	if err := s.Gerar(context.Background(), movimentacaoID, force); err != nil {
		logrus.WithError(err).WithField("movimentacao_id", movimentacaoID).Warn("Failed to generate CIMBPM document")
	}
}

func podeBaixar(ator *models.Ator, mov *models.MovimentacaoBemPatrimonial) bool {
	if ator.IsGestor() {
		return true
	}
	if !ator.Papeis.Has(models.PapelOperadorInventario) {
		return false
	}
	return ator.PertenceA(mov.UnidadeOrigemID) || ator.PertenceA(mov.UnidadeDestinoID)
}

// Download returns the file name and content of a movement's CIMBPM,
// regenerating the document when the stored file is missing.
func (s *DocumentoService) Download(ctx context.Context, ator *models.Ator, movimentacaoID uint) (string, []byte, error) {
	var mov *models.MovimentacaoBemPatrimonial
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		mov, err = tx.GetMovimentacao(ctx, movimentacaoID)
		return err
	})
	if err != nil {
		if store.IsNotFound(err) {
			return "", nil, newError(ErrNotFound, i18n.KeyMovimentacaoNotFound)
		}
		return "", nil, err
	}

	if !podeBaixar(ator, mov) {
		return "", nil, newError(ErrForbidden, i18n.KeyDocumentoForbidden)
	}
	if mov.Numero() == "" {
		return "", nil, newError(ErrNotFound, i18n.KeyDocumentoNotFound)
	}

	if mov.DocumentoCIMBPM != "" {
		data, err := s.storage.Get(ctx, mov.DocumentoCIMBPM)
		if err == nil {
			return NomeArquivoCIMBPM(mov.Numero()), data, nil
		}
		if !errors.Is(err, ErrDocumentoAusente) {
			return "", nil, err
		}
	}

	logrus.WithField("movimentacao_id", mov.ID).Info("Regenerating missing CIMBPM document")
	if err := s.Gerar(ctx, mov.ID, true); err != nil {
		logrus.WithError(err).WithField("movimentacao_id", mov.ID).Error("Failed to regenerate CIMBPM document")
		return "", nil, newError(ErrNotFound, i18n.KeyDocumentoNotFound)
	}

	var key string
	err = s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		m, err := tx.GetMovimentacao(ctx, mov.ID)
		if err != nil {
			return err
		}
		key = m.DocumentoCIMBPM
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	data, err := s.storage.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("movimentacao_id", mov.ID).Error("Regenerated CIMBPM document not readable")
		return "", nil, newError(ErrNotFound, i18n.KeyDocumentoNotFound)
	}
	return NomeArquivoCIMBPM(mov.Numero()), data, nil
}
