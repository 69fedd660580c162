// internal/services/cimbpm_retroativo.go
package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

type ResumoRetroativo struct {
	Limpos      int64
	Pendentes   int
	Processados int
	Erros       map[uint]error
}

// NumerarRetroativo gives a CIMBPM number to every movement lacking one, in
// creation order, one transaction per movement. With limpar all numbers are
// cleared first. With dryRun it only counts.
func (s *MovimentacaoService) NumerarRetroativo(ctx context.Context, limpar, dryRun bool) (*ResumoRetroativo, error) {
	resumo := &ResumoRetroativo{Erros: map[uint]error{}}

	if limpar && !dryRun {
		err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
			var err error
			resumo.Limpos, err = tx.LimparNumerosCIMBPM(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	var pendentes []uint
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		movs, _, err := tx.ListMovimentacoes(ctx, store.MovimentacaoFiltro{SemCIMBPM: true, Chronological: true})
		for _, m := range movs {
			pendentes = append(pendentes, m.ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	resumo.Pendentes = len(pendentes)
	if dryRun {
		return resumo, nil
	}

	for _, id := range pendentes {
		err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
			mov, err := tx.LockMovimentacao(ctx, id)
			if err != nil {
				return err
			}
			return s.cimbpm.Numerar(ctx, tx, mov)
		})
		if err != nil {
			resumo.Erros[id] = err
			logrus.WithError(err).WithField("movimentacao_id", id).Error("Failed to number movimentacao")
			continue
		}
		resumo.Processados++
	}
	return resumo, nil
}
