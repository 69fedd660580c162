// cmd/cimbpm-retroativo/main.go
//
// Assigns CIMBPM numbers to movements created before numbering existed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/config"
	"github.com/sme-sp/bens-fisicos-backend/internal/database"
	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

func main() {
	limpar := flag.Bool("limpar", false, "clear every CIMBPM number before renumbering")
	dryRun := flag.Bool("dry-run", false, "only count the movements that would be numbered")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}
	if err := i18n.Initialize(); err != nil {
		logrus.Fatal("Failed to initialize i18n: ", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer database.Close(db)

	st := store.NewGormStore(db)
	movimentacoes := services.NewMovimentacaoService(st, services.NewCIMBPMService(), nil, nil)

	resumo, err := movimentacoes.NumerarRetroativo(context.Background(), *limpar, *dryRun)
	if err != nil {
		logrus.Fatal("Failed to number movimentacoes: ", err)
	}

	if *limpar && !*dryRun {
		fmt.Printf("%d números limpos\n", resumo.Limpos)
	}
	if resumo.Pendentes == 0 {
		fmt.Println("Nenhuma movimentação pendente")
		return
	}
	if *dryRun {
		fmt.Printf("%d movimentações seriam processadas\n", resumo.Pendentes)
		return
	}

	fmt.Printf("%d processados\n", resumo.Processados)
	if len(resumo.Erros) > 0 {
		ids := make([]int, 0, len(resumo.Erros))
		for id := range resumo.Erros {
			ids = append(ids, int(id))
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Fprintf(os.Stderr, "#%d: %v\n", id, resumo.Erros[uint(id)])
		}
		fmt.Printf("%d erros\n", len(resumo.Erros))
		os.Exit(1)
	}
}
