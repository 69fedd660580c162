// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/sme-sp/bens-fisicos-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store runs every unit of work inside a transaction. Lock* methods take
// row locks that are held until fn returns.
type Store interface {
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	GetUnidade(ctx context.Context, id uint) (*models.UnidadeAdministrativa, error)
	ListUnidades(ctx context.Context, filtro UnidadeFiltro) ([]models.UnidadeAdministrativa, int64, error)
	CreateUnidade(ctx context.Context, u *models.UnidadeAdministrativa) error
	SaveUnidade(ctx context.Context, u *models.UnidadeAdministrativa) error
	CountBensPorUnidade(ctx context.Context, unidadeID uint) (int64, error)

	GetUsuario(ctx context.Context, id uint) (*models.Usuario, error)
	GetUsuarioByLogin(ctx context.Context, login string) (*models.Usuario, error)
	ListUsuariosAtivos(ctx context.Context, papel models.Papel, unidadeID *uint) ([]models.Usuario, error)
	CountUsuarios(ctx context.Context) (int64, error)
	CreateUsuario(ctx context.Context, u *models.Usuario) error
	SaveUsuario(ctx context.Context, u *models.Usuario) error

	GetBem(ctx context.Context, id uint) (*models.BemPatrimonial, error)
	LockBem(ctx context.Context, id uint) (*models.BemPatrimonial, error)
	ListBens(ctx context.Context, filtro BemFiltro) ([]models.BemPatrimonial, int64, error)
	// LockBensSemNumero skips rows already locked by another transaction.
	LockBensSemNumero(ctx context.Context, ids []uint) ([]models.BemPatrimonial, error)
	CreateBem(ctx context.Context, b *models.BemPatrimonial) error
	SaveBem(ctx context.Context, b *models.BemPatrimonial) error
	NumeroPatrimonialEmUso(ctx context.Context, numero string, exceptID uint) (bool, error)

	CreateStatus(ctx context.Context, s *models.StatusBemPatrimonial) error
	ListStatus(ctx context.Context, bemID uint) ([]models.StatusBemPatrimonial, error)

	GetMovimentacao(ctx context.Context, id uint) (*models.MovimentacaoBemPatrimonial, error)
	LockMovimentacao(ctx context.Context, id uint) (*models.MovimentacaoBemPatrimonial, error)
	ListMovimentacoes(ctx context.Context, filtro MovimentacaoFiltro) ([]models.MovimentacaoBemPatrimonial, int64, error)
	ExisteMovimentacaoPendente(ctx context.Context, bemID uint) (bool, error)
	CreateMovimentacao(ctx context.Context, m *models.MovimentacaoBemPatrimonial) error
	SaveMovimentacao(ctx context.Context, m *models.MovimentacaoBemPatrimonial) error
	// MaxSequencialCIMBPM locks the year's numbered movements and returns the
	// highest sequence in use, 0 when none.
	MaxSequencialCIMBPM(ctx context.Context, ano int) (int, error)
	LimparNumerosCIMBPM(ctx context.Context) (int64, error)

	CreateAuditLog(ctx context.Context, l *models.AuditLog) error
}

type Page struct {
	Offset int
	Limit  int
}

type UnidadeFiltro struct {
	Page
	Status models.StatusUnidade
	Search string
}

type BemFiltro struct {
	Page
	IDs       []uint
	Status    models.StatusBem
	UnidadeID *uint
	Search    string
}

type MovimentacaoFiltro struct {
	Page
	IDs       []uint
	Status    models.StatusMovimentacao
	BemID     *uint
	UnidadeID *uint // origin or destination
	SemCIMBPM bool
	// Chronological orders by creation time ascending
	Chronological bool
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
