// internal/store/memory_store.go
package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sme-sp/bens-fisicos-backend/internal/models"
)

// MemoryStore keeps every table in maps. Transactions run one at a time on a
// copy of the state that replaces the committed state when fn succeeds, so
// row locks reduce to the store mutex.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState(), now: time.Now}
}

func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&memTx{st: working, now: s.now}); err != nil {
		return err
	}
	s.state = working
	return nil
}

type memState struct {
	nextID        map[string]uint
	unidades      map[uint]models.UnidadeAdministrativa
	usuarios      map[uint]models.Usuario
	bens          map[uint]models.BemPatrimonial
	status        map[uint]models.StatusBemPatrimonial
	movimentacoes map[uint]models.MovimentacaoBemPatrimonial
	auditLogs     []models.AuditLog
}

func newMemState() *memState {
	return &memState{
		nextID:        map[string]uint{},
		unidades:      map[uint]models.UnidadeAdministrativa{},
		usuarios:      map[uint]models.Usuario{},
		bens:          map[uint]models.BemPatrimonial{},
		status:        map[uint]models.StatusBemPatrimonial{},
		movimentacoes: map[uint]models.MovimentacaoBemPatrimonial{},
	}
}

func (st *memState) clone() *memState {
	c := newMemState()
	for k, v := range st.nextID {
		c.nextID[k] = v
	}
	for k, v := range st.unidades {
		c.unidades[k] = copyUnidade(v)
	}
	for k, v := range st.usuarios {
		c.usuarios[k] = copyUsuario(v)
	}
	for k, v := range st.bens {
		c.bens[k] = copyBem(v)
	}
	for k, v := range st.status {
		c.status[k] = copyStatus(v)
	}
	for k, v := range st.movimentacoes {
		c.movimentacoes[k] = copyMovimentacao(v)
	}
	c.auditLogs = append(c.auditLogs, st.auditLogs...)
	return c
}

func (st *memState) id(table string) uint {
	st.nextID[table]++
	return st.nextID[table]
}

type memTx struct {
	st  *memState
	now func() time.Time
}

func uintPtr(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func strPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func timePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyUnidade(u models.UnidadeAdministrativa) models.UnidadeAdministrativa {
	u.Codigo = strPtr(u.Codigo)
	return u
}

func copyUsuario(u models.Usuario) models.Usuario {
	u.Grupos = append([]string(nil), u.Grupos...)
	u.UnidadeAdministrativaID = uintPtr(u.UnidadeAdministrativaID)
	u.LastLoginAt = timePtr(u.LastLoginAt)
	u.UnidadeAdministrativa = nil
	return u
}

func copyBem(b models.BemPatrimonial) models.BemPatrimonial {
	b.UnidadeAdministrativaID = uintPtr(b.UnidadeAdministrativaID)
	b.NumeroPatrimonial = strPtr(b.NumeroPatrimonial)
	b.DataCompraEntrega = timePtr(b.DataCompraEntrega)
	b.UnidadeAdministrativa = nil
	b.CriadoPor = nil
	return b
}

func copyStatus(s models.StatusBemPatrimonial) models.StatusBemPatrimonial {
	s.AtualizadoPorID = uintPtr(s.AtualizadoPorID)
	s.AtualizadoPor = nil
	return s
}

func copyMovimentacao(m models.MovimentacaoBemPatrimonial) models.MovimentacaoBemPatrimonial {
	m.AprovadoPorID = uintPtr(m.AprovadoPorID)
	m.RejeitadoPorID = uintPtr(m.RejeitadoPorID)
	m.CanceladoPorID = uintPtr(m.CanceladoPorID)
	m.NumeroCIMBPM = strPtr(m.NumeroCIMBPM)
	m.BemPatrimonial = nil
	m.UnidadeOrigem = nil
	m.UnidadeDestino = nil
	m.SolicitadoPor = nil
	m.AprovadoPor = nil
	m.RejeitadoPor = nil
	m.CanceladoPor = nil
	return m
}

func (t *memTx) stamp(base *models.BaseModel) {
	now := t.now()
	if base.CriadoEm.IsZero() {
		base.CriadoEm = now
	}
	base.AtualizadoEm = now
}

func page[T any](items []T, p Page) []T {
	if p.Offset > 0 {
		if p.Offset >= len(items) {
			return nil
		}
		items = items[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Unidades

func (t *memTx) GetUnidade(ctx context.Context, id uint) (*models.UnidadeAdministrativa, error) {
	u, ok := t.st.unidades[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = copyUnidade(u)
	return &u, nil
}

func (t *memTx) ListUnidades(ctx context.Context, filtro UnidadeFiltro) ([]models.UnidadeAdministrativa, int64, error) {
	search := strings.ToLower(filtro.Search)
	var out []models.UnidadeAdministrativa
	for _, u := range t.st.unidades {
		if filtro.Status != "" && u.Status != filtro.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Nome), search) &&
			!strings.Contains(strings.ToLower(u.Sigla), search) &&
			!strings.Contains(u.CodigoOuVazio(), search) {
			continue
		}
		out = append(out, copyUnidade(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return page(out, filtro.Page), int64(len(out)), nil
}

func (t *memTx) codigoEmUso(codigo *string, exceptID uint) bool {
	if codigo == nil {
		return false
	}
	for id, u := range t.st.unidades {
		if id != exceptID && u.Codigo != nil && *u.Codigo == *codigo {
			return true
		}
	}
	return false
}

func (t *memTx) CreateUnidade(ctx context.Context, u *models.UnidadeAdministrativa) error {
	if t.codigoEmUso(u.Codigo, 0) {
		return ErrDuplicate
	}
	if u.Status == "" {
		u.Status = models.StatusUnidadeAtiva
	}
	u.ID = t.st.id("unidades")
	t.stamp(&u.BaseModel)
	t.st.unidades[u.ID] = copyUnidade(*u)
	return nil
}

func (t *memTx) SaveUnidade(ctx context.Context, u *models.UnidadeAdministrativa) error {
	if _, ok := t.st.unidades[u.ID]; !ok {
		return ErrNotFound
	}
	if t.codigoEmUso(u.Codigo, u.ID) {
		return ErrDuplicate
	}
	t.stamp(&u.BaseModel)
	t.st.unidades[u.ID] = copyUnidade(*u)
	return nil
}

func (t *memTx) CountBensPorUnidade(ctx context.Context, unidadeID uint) (int64, error) {
	var count int64
	for _, b := range t.st.bens {
		if b.UnidadeAdministrativaID != nil && *b.UnidadeAdministrativaID == unidadeID && b.Quantidade > 0 {
			count++
		}
	}
	return count, nil
}

// Usuarios

func (t *memTx) GetUsuario(ctx context.Context, id uint) (*models.Usuario, error) {
	u, ok := t.st.usuarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = copyUsuario(u)
	return &u, nil
}

func (t *memTx) GetUsuarioByLogin(ctx context.Context, login string) (*models.Usuario, error) {
	for _, u := range t.st.usuarios {
		if u.Username == login || (u.Email != "" && strings.EqualFold(u.Email, login)) {
			u = copyUsuario(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) ListUsuariosAtivos(ctx context.Context, papel models.Papel, unidadeID *uint) ([]models.Usuario, error) {
	var out []models.Usuario
	for _, u := range t.st.usuarios {
		if !u.IsActive {
			continue
		}
		if papel != "" {
			found := false
			for _, g := range u.Grupos {
				if g == string(papel) {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if unidadeID != nil && (u.UnidadeAdministrativaID == nil || *u.UnidadeAdministrativaID != *unidadeID) {
			continue
		}
		out = append(out, copyUsuario(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) CountUsuarios(ctx context.Context) (int64, error) {
	return int64(len(t.st.usuarios)), nil
}

func (t *memTx) CreateUsuario(ctx context.Context, u *models.Usuario) error {
	for _, existing := range t.st.usuarios {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	u.ID = t.st.id("usuarios")
	t.stamp(&u.BaseModel)
	t.st.usuarios[u.ID] = copyUsuario(*u)
	return nil
}

func (t *memTx) SaveUsuario(ctx context.Context, u *models.Usuario) error {
	if _, ok := t.st.usuarios[u.ID]; !ok {
		return ErrNotFound
	}
	t.stamp(&u.BaseModel)
	t.st.usuarios[u.ID] = copyUsuario(*u)
	return nil
}

// Bens

func (t *memTx) hydrateBem(b *models.BemPatrimonial) {
	if b.UnidadeAdministrativaID != nil {
		if u, ok := t.st.unidades[*b.UnidadeAdministrativaID]; ok {
			u = copyUnidade(u)
			b.UnidadeAdministrativa = &u
		}
	}
}

func (t *memTx) GetBem(ctx context.Context, id uint) (*models.BemPatrimonial, error) {
	b, ok := t.st.bens[id]
	if !ok {
		return nil, ErrNotFound
	}
	b = copyBem(b)
	t.hydrateBem(&b)
	return &b, nil
}

func (t *memTx) LockBem(ctx context.Context, id uint) (*models.BemPatrimonial, error) {
	b, ok := t.st.bens[id]
	if !ok {
		return nil, ErrNotFound
	}
	b = copyBem(b)
	return &b, nil
}

func (t *memTx) ListBens(ctx context.Context, filtro BemFiltro) ([]models.BemPatrimonial, int64, error) {
	search := strings.ToLower(filtro.Search)
	var out []models.BemPatrimonial
	for _, b := range t.st.bens {
		if len(filtro.IDs) > 0 && !containsID(filtro.IDs, b.ID) {
			continue
		}
		if filtro.Status != "" && b.Status != filtro.Status {
			continue
		}
		if filtro.UnidadeID != nil && (b.UnidadeAdministrativaID == nil || *b.UnidadeAdministrativaID != *filtro.UnidadeID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(b.Nome), search) && !strings.Contains(b.Numero(), search) {
			continue
		}
		b = copyBem(b)
		t.hydrateBem(&b)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, filtro.Page), int64(len(out)), nil
}

func (t *memTx) LockBensSemNumero(ctx context.Context, ids []uint) ([]models.BemPatrimonial, error) {
	var out []models.BemPatrimonial
	for _, b := range t.st.bens {
		if containsID(ids, b.ID) && b.Numero() == "" {
			out = append(out, copyBem(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) CreateBem(ctx context.Context, b *models.BemPatrimonial) error {
	if b.NumeroPatrimonial != nil {
		if used, _ := t.NumeroPatrimonialEmUso(ctx, *b.NumeroPatrimonial, 0); used {
			return ErrDuplicate
		}
	}
	if b.Status == "" {
		b.Status = models.StatusBemAguardandoAprovacao
	}
	b.ID = t.st.id("bens")
	t.stamp(&b.BaseModel)
	t.st.bens[b.ID] = copyBem(*b)
	return nil
}

func (t *memTx) SaveBem(ctx context.Context, b *models.BemPatrimonial) error {
	if _, ok := t.st.bens[b.ID]; !ok {
		return ErrNotFound
	}
	if b.NumeroPatrimonial != nil {
		if used, _ := t.NumeroPatrimonialEmUso(ctx, *b.NumeroPatrimonial, b.ID); used {
			return ErrDuplicate
		}
	}
	t.stamp(&b.BaseModel)
	t.st.bens[b.ID] = copyBem(*b)
	return nil
}

func (t *memTx) NumeroPatrimonialEmUso(ctx context.Context, numero string, exceptID uint) (bool, error) {
	for id, b := range t.st.bens {
		if id != exceptID && b.NumeroPatrimonial != nil && *b.NumeroPatrimonial == numero {
			return true, nil
		}
	}
	return false, nil
}

// Status

func (t *memTx) CreateStatus(ctx context.Context, s *models.StatusBemPatrimonial) error {
	if _, ok := t.st.bens[s.BemPatrimonialID]; !ok {
		return ErrNotFound
	}
	s.ID = t.st.id("status")
	if s.CriadoEm.IsZero() {
		s.CriadoEm = t.now()
	}
	t.st.status[s.ID] = copyStatus(*s)
	return nil
}

func (t *memTx) ListStatus(ctx context.Context, bemID uint) ([]models.StatusBemPatrimonial, error) {
	var out []models.StatusBemPatrimonial
	for _, s := range t.st.status {
		if s.BemPatrimonialID != bemID {
			continue
		}
		s = copyStatus(s)
		if s.AtualizadoPorID != nil {
			if u, ok := t.st.usuarios[*s.AtualizadoPorID]; ok {
				u = copyUsuario(u)
				s.AtualizadoPor = &u
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CriadoEm.Equal(out[j].CriadoEm) {
			return out[i].ID > out[j].ID
		}
		return out[i].CriadoEm.After(out[j].CriadoEm)
	})
	return out, nil
}

// Movimentacoes

func (t *memTx) usuarioRef(id *uint) *models.Usuario {
	if id == nil {
		return nil
	}
	u, ok := t.st.usuarios[*id]
	if !ok {
		return nil
	}
	u = copyUsuario(u)
	return &u
}

func (t *memTx) unidadeRef(id uint) *models.UnidadeAdministrativa {
	u, ok := t.st.unidades[id]
	if !ok {
		return nil
	}
	u = copyUnidade(u)
	return &u
}

func (t *memTx) hydrateMovimentacao(m *models.MovimentacaoBemPatrimonial) {
	if b, ok := t.st.bens[m.BemPatrimonialID]; ok {
		b = copyBem(b)
		m.BemPatrimonial = &b
	}
	m.UnidadeOrigem = t.unidadeRef(m.UnidadeOrigemID)
	m.UnidadeDestino = t.unidadeRef(m.UnidadeDestinoID)
	solicitante := m.SolicitadoPorID
	m.SolicitadoPor = t.usuarioRef(&solicitante)
	m.AprovadoPor = t.usuarioRef(m.AprovadoPorID)
	m.RejeitadoPor = t.usuarioRef(m.RejeitadoPorID)
	m.CanceladoPor = t.usuarioRef(m.CanceladoPorID)
}

func (t *memTx) GetMovimentacao(ctx context.Context, id uint) (*models.MovimentacaoBemPatrimonial, error) {
	m, ok := t.st.movimentacoes[id]
	if !ok {
		return nil, ErrNotFound
	}
	m = copyMovimentacao(m)
	t.hydrateMovimentacao(&m)
	return &m, nil
}

func (t *memTx) LockMovimentacao(ctx context.Context, id uint) (*models.MovimentacaoBemPatrimonial, error) {
	m, ok := t.st.movimentacoes[id]
	if !ok {
		return nil, ErrNotFound
	}
	m = copyMovimentacao(m)
	return &m, nil
}

func (t *memTx) ListMovimentacoes(ctx context.Context, filtro MovimentacaoFiltro) ([]models.MovimentacaoBemPatrimonial, int64, error) {
	var out []models.MovimentacaoBemPatrimonial
	for _, m := range t.st.movimentacoes {
		if len(filtro.IDs) > 0 && !containsID(filtro.IDs, m.ID) {
			continue
		}
		if filtro.Status != "" && m.Status != filtro.Status {
			continue
		}
		if filtro.BemID != nil && m.BemPatrimonialID != *filtro.BemID {
			continue
		}
		if filtro.UnidadeID != nil && m.UnidadeOrigemID != *filtro.UnidadeID && m.UnidadeDestinoID != *filtro.UnidadeID {
			continue
		}
		if filtro.SemCIMBPM && m.Numero() != "" {
			continue
		}
		m = copyMovimentacao(m)
		t.hydrateMovimentacao(&m)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !filtro.Chronological {
			a, b = b, a
		}
		if a.CriadoEm.Equal(b.CriadoEm) {
			return a.ID < b.ID
		}
		return a.CriadoEm.Before(b.CriadoEm)
	})
	return page(out, filtro.Page), int64(len(out)), nil
}

func (t *memTx) ExisteMovimentacaoPendente(ctx context.Context, bemID uint) (bool, error) {
	for _, m := range t.st.movimentacoes {
		if m.BemPatrimonialID == bemID && m.Status == models.StatusMovimentacaoEnviada {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) checkMovimentacaoUnique(m *models.MovimentacaoBemPatrimonial) error {
	for id, other := range t.st.movimentacoes {
		if id == m.ID {
			continue
		}
		if m.Status == models.StatusMovimentacaoEnviada && other.Status == models.StatusMovimentacaoEnviada &&
			other.BemPatrimonialID == m.BemPatrimonialID {
			return ErrDuplicate
		}
		if m.Numero() != "" && other.Numero() == m.Numero() {
			return ErrDuplicate
		}
	}
	return nil
}

func (t *memTx) CreateMovimentacao(ctx context.Context, m *models.MovimentacaoBemPatrimonial) error {
	if m.Status == "" {
		m.Status = models.StatusMovimentacaoEnviada
	}
	if err := t.checkMovimentacaoUnique(m); err != nil {
		return err
	}
	m.ID = t.st.id("movimentacoes")
	t.stamp(&m.BaseModel)
	t.st.movimentacoes[m.ID] = copyMovimentacao(*m)
	return nil
}

func (t *memTx) SaveMovimentacao(ctx context.Context, m *models.MovimentacaoBemPatrimonial) error {
	if _, ok := t.st.movimentacoes[m.ID]; !ok {
		return ErrNotFound
	}
	if err := t.checkMovimentacaoUnique(m); err != nil {
		return err
	}
	t.stamp(&m.BaseModel)
	t.st.movimentacoes[m.ID] = copyMovimentacao(*m)
	return nil
}

func (t *memTx) MaxSequencialCIMBPM(ctx context.Context, ano int) (int, error) {
	suffix := "." + strconv.Itoa(ano)
	max := 0
	for _, m := range t.st.movimentacoes {
		numero := m.Numero()
		if !strings.HasSuffix(numero, suffix) || len(numero) < 15 {
			continue
		}
		// SUBSTRING(numero FROM 9 FOR 7)
		seq, err := strconv.Atoi(numero[8:15])
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (t *memTx) LimparNumerosCIMBPM(ctx context.Context) (int64, error) {
	var count int64
	for id, m := range t.st.movimentacoes {
		if m.NumeroCIMBPM == nil {
			continue
		}
		m.NumeroCIMBPM = nil
		m.DocumentoCIMBPM = ""
		t.st.movimentacoes[id] = m
		count++
	}
	return count, nil
}

func (t *memTx) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	l.ID = t.st.id("audit_logs")
	if l.CriadoEm.IsZero() {
		l.CriadoEm = t.now()
	}
	t.st.auditLogs = append(t.st.auditLogs, *l)
	return nil
}

// AuditLogs returns a snapshot of the recorded audit entries.
func (s *MemoryStore) AuditLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.state.auditLogs...)
}
