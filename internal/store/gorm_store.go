// internal/store/gorm_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sme-sp/bens-fisicos-backend/internal/database"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
)

// advisory lock namespace for CIMBPM sequence generation
const cimbpmLockNamespace = 4242

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) RunInTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func paginate(q *gorm.DB, p Page) *gorm.DB {
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// Unidades

func (t *gormTx) GetUnidade(ctx context.Context, id uint) (*models.UnidadeAdministrativa, error) {
	var u models.UnidadeAdministrativa
	if err := t.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (t *gormTx) ListUnidades(ctx context.Context, filtro UnidadeFiltro) ([]models.UnidadeAdministrativa, int64, error) {
	q := t.db.WithContext(ctx).Model(&models.UnidadeAdministrativa{})
	if filtro.Status != "" {
		q = q.Where("status = ?", filtro.Status)
	}
	if filtro.Search != "" {
		like := "%" + strings.ToLower(filtro.Search) + "%"
		q = q.Where("LOWER(nome) LIKE ? OR LOWER(sigla) LIKE ? OR codigo LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var unidades []models.UnidadeAdministrativa
	if err := paginate(q.Order("nome ASC"), filtro.Page).Find(&unidades).Error; err != nil {
		return nil, 0, err
	}
	return unidades, total, nil
}

func (t *gormTx) CreateUnidade(ctx context.Context, u *models.UnidadeAdministrativa) error {
	return translate(t.db.WithContext(ctx).Create(u).Error)
}

func (t *gormTx) SaveUnidade(ctx context.Context, u *models.UnidadeAdministrativa) error {
	return translate(t.db.WithContext(ctx).Save(u).Error)
}

func (t *gormTx) CountBensPorUnidade(ctx context.Context, unidadeID uint) (int64, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&models.BemPatrimonial{}).
		Where("unidade_administrativa_id = ? AND quantidade > 0", unidadeID).
		Count(&count).Error
	return count, err
}

// Usuarios

func (t *gormTx) GetUsuario(ctx context.Context, id uint) (*models.Usuario, error) {
	var u models.Usuario
	if err := t.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (t *gormTx) GetUsuarioByLogin(ctx context.Context, login string) (*models.Usuario, error) {
	var u models.Usuario
	err := t.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = LOWER(?)", login, login).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (t *gormTx) ListUsuariosAtivos(ctx context.Context, papel models.Papel, unidadeID *uint) ([]models.Usuario, error) {
	q := t.db.WithContext(ctx).Where("is_active = ?", true)
	if papel != "" {
		q = q.Where("? = ANY(grupos)", string(papel))
	}
	if unidadeID != nil {
		q = q.Where("unidade_administrativa_id = ?", *unidadeID)
	}

	var usuarios []models.Usuario
	if err := q.Order("id ASC").Find(&usuarios).Error; err != nil {
		return nil, err
	}
	return usuarios, nil
}

func (t *gormTx) CountUsuarios(ctx context.Context) (int64, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&models.Usuario{}).Count(&count).Error
	return count, err
}

func (t *gormTx) CreateUsuario(ctx context.Context, u *models.Usuario) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

func (t *gormTx) SaveUsuario(ctx context.Context, u *models.Usuario) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error)
}

// Bens

func (t *gormTx) GetBem(ctx context.Context, id uint) (*models.BemPatrimonial, error) {
	var b models.BemPatrimonial
	if err := t.db.WithContext(ctx).Preload("UnidadeAdministrativa").First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (t *gormTx) LockBem(ctx context.Context, id uint) (*models.BemPatrimonial, error) {
	var b models.BemPatrimonial
	if err := t.db.WithContext(ctx).Clauses(forUpdate()).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (t *gormTx) ListBens(ctx context.Context, filtro BemFiltro) ([]models.BemPatrimonial, int64, error) {
	q := t.db.WithContext(ctx).Model(&models.BemPatrimonial{})
	if len(filtro.IDs) > 0 {
		q = q.Where("id IN ?", filtro.IDs)
	}
	if filtro.Status != "" {
		q = q.Where("status = ?", filtro.Status)
	}
	if filtro.UnidadeID != nil {
		q = q.Where("unidade_administrativa_id = ?", *filtro.UnidadeID)
	}
	if filtro.Search != "" {
		like := "%" + strings.ToLower(filtro.Search) + "%"
		q = q.Where("LOWER(nome) LIKE ? OR numero_patrimonial LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bens []models.BemPatrimonial
	err := paginate(q.Preload("UnidadeAdministrativa").Order("id ASC"), filtro.Page).Find(&bens).Error
	if err != nil {
		return nil, 0, err
	}
	return bens, total, nil
}

func (t *gormTx) LockBensSemNumero(ctx context.Context, ids []uint) ([]models.BemPatrimonial, error) {
	var bens []models.BemPatrimonial
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("id IN ?", ids).
		Where("numero_patrimonial IS NULL OR numero_patrimonial = ''").
		Order("id ASC").
		Find(&bens).Error
	return bens, err
}

func (t *gormTx) CreateBem(ctx context.Context, b *models.BemPatrimonial) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (t *gormTx) SaveBem(ctx context.Context, b *models.BemPatrimonial) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error)
}

func (t *gormTx) NumeroPatrimonialEmUso(ctx context.Context, numero string, exceptID uint) (bool, error) {
	var count int64
	q := t.db.WithContext(ctx).Model(&models.BemPatrimonial{}).Where("numero_patrimonial = ?", numero)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Status

func (t *gormTx) CreateStatus(ctx context.Context, s *models.StatusBemPatrimonial) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (t *gormTx) ListStatus(ctx context.Context, bemID uint) ([]models.StatusBemPatrimonial, error) {
	var historico []models.StatusBemPatrimonial
	err := t.db.WithContext(ctx).
		Preload("AtualizadoPor").
		Where("bem_patrimonial_id = ?", bemID).
		Order("criado_em DESC, id DESC").
		Find(&historico).Error
	return historico, err
}

// Movimentacoes

func preloadMovimentacao(q *gorm.DB) *gorm.DB {
	return q.Preload("BemPatrimonial").
		Preload("UnidadeOrigem").
		Preload("UnidadeDestino").
		Preload("SolicitadoPor").
		Preload("AprovadoPor").
		Preload("RejeitadoPor").
		Preload("CanceladoPor")
}

func (t *gormTx) GetMovimentacao(ctx context.Context, id uint) (*models.MovimentacaoBemPatrimonial, error) {
	var m models.MovimentacaoBemPatrimonial
	if err := preloadMovimentacao(t.db.WithContext(ctx)).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (t *gormTx) LockMovimentacao(ctx context.Context, id uint) (*models.MovimentacaoBemPatrimonial, error) {
	var m models.MovimentacaoBemPatrimonial
	if err := t.db.WithContext(ctx).Clauses(forUpdate()).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (t *gormTx) ListMovimentacoes(ctx context.Context, filtro MovimentacaoFiltro) ([]models.MovimentacaoBemPatrimonial, int64, error) {
	q := t.db.WithContext(ctx).Model(&models.MovimentacaoBemPatrimonial{})
	if len(filtro.IDs) > 0 {
		q = q.Where("id IN ?", filtro.IDs)
	}
	if filtro.Status != "" {
		q = q.Where("status = ?", filtro.Status)
	}
	if filtro.BemID != nil {
		q = q.Where("bem_patrimonial_id = ?", *filtro.BemID)
	}
	if filtro.UnidadeID != nil {
		q = q.Where("unidade_origem_id = ? OR unidade_destino_id = ?", *filtro.UnidadeID, *filtro.UnidadeID)
	}
	if filtro.SemCIMBPM {
		q = q.Where("numero_cimbpm IS NULL OR numero_cimbpm = ''")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "criado_em DESC, id DESC"
	if filtro.Chronological {
		order = "criado_em ASC, id ASC"
	}

	var movs []models.MovimentacaoBemPatrimonial
	if err := paginate(preloadMovimentacao(q).Order(order), filtro.Page).Find(&movs).Error; err != nil {
		return nil, 0, err
	}
	return movs, total, nil
}

func (t *gormTx) ExisteMovimentacaoPendente(ctx context.Context, bemID uint) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&models.MovimentacaoBemPatrimonial{}).
		Where("bem_patrimonial_id = ? AND status = ?", bemID, models.StatusMovimentacaoEnviada).
		Count(&count).Error
	return count > 0, err
}

func (t *gormTx) CreateMovimentacao(ctx context.Context, m *models.MovimentacaoBemPatrimonial) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error)
}

func (t *gormTx) SaveMovimentacao(ctx context.Context, m *models.MovimentacaoBemPatrimonial) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error)
}

func (t *gormTx) MaxSequencialCIMBPM(ctx context.Context, ano int) (int, error) {
	db := t.db.WithContext(ctx)

	// Row locks do not cover a year without numbers yet, the advisory lock does.
	if err := db.Exec("SELECT pg_advisory_xact_lock(?, ?)", cimbpmLockNamespace, ano).Error; err != nil {
		return 0, fmt.Errorf("failed to take cimbpm lock: %w", err)
	}

	suffix := "%." + strconv.Itoa(ano)

	var locked []models.MovimentacaoBemPatrimonial
	err := db.Clauses(forUpdate()).Select("id").
		Where("numero_cimbpm LIKE ?", suffix).
		Find(&locked).Error
	if err != nil {
		return 0, fmt.Errorf("failed to lock cimbpm rows: %w", err)
	}

	var max sql.NullInt64
	err = db.Model(&models.MovimentacaoBemPatrimonial{}).
		Select("MAX(CAST(SUBSTRING(numero_cimbpm FROM 9 FOR 7) AS INTEGER))").
		Where("numero_cimbpm LIKE ?", suffix).
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read cimbpm sequence: %w", err)
	}
	return int(max.Int64), nil
}

func (t *gormTx) LimparNumerosCIMBPM(ctx context.Context) (int64, error) {
	res := t.db.WithContext(ctx).Model(&models.MovimentacaoBemPatrimonial{}).
		Where("numero_cimbpm IS NOT NULL").
		Updates(map[string]interface{}{"numero_cimbpm": nil, "documento_cimbpm": ""})
	return res.RowsAffected, res.Error
}

func (t *gormTx) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	return t.db.WithContext(ctx).Create(l).Error
}
