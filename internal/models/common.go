// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Base model with common fields. Numeric ids feed the generated patrimonial
// numbers, so entities use autoincrement keys.
type BaseModel struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CriadoEm     time.Time `json:"criado_em" gorm:"column:criado_em;autoCreateTime"`
	AtualizadoEm time.Time `json:"atualizado_em" gorm:"column:atualizado_em;autoUpdateTime"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type StatusUnidade string

const (
	StatusUnidadeAtiva   StatusUnidade = "ativa"
	StatusUnidadeInativa StatusUnidade = "inativa"
)

type StatusBem string

const (
	StatusBemAguardandoAprovacao StatusBem = "aguardando_aprovacao"
	StatusBemAprovado            StatusBem = "aprovado"
	StatusBemNaoAprovado         StatusBem = "nao_aprovado"
	StatusBemBloqueado           StatusBem = "bloqueado"
)

func (s StatusBem) Valid() bool {
	switch s {
	case StatusBemAguardandoAprovacao, StatusBemAprovado, StatusBemNaoAprovado, StatusBemBloqueado:
		return true
	}
	return false
}

type StatusMovimentacao string

const (
	StatusMovimentacaoEnviada   StatusMovimentacao = "enviada"
	StatusMovimentacaoAceita    StatusMovimentacao = "aceita"
	StatusMovimentacaoRejeitada StatusMovimentacao = "rejeitada"
	StatusMovimentacaoCancelada StatusMovimentacao = "cancelada"
)

// Finalizada reports whether no further transition is possible.
func (s StatusMovimentacao) Finalizada() bool {
	return s == StatusMovimentacaoAceita || s == StatusMovimentacaoRejeitada || s == StatusMovimentacaoCancelada
}

type OrigemBem string

const (
	OrigemRepasseVerba  OrigemBem = "repasse_verba"
	OrigemCompraDireta  OrigemBem = "compra_direta"
	OrigemDoacao        OrigemBem = "doacao"
	OrigemTransferencia OrigemBem = "transferencia"
	OrigemOutros        OrigemBem = "outros"
)

var Origens = []OrigemBem{
	OrigemRepasseVerba,
	OrigemCompraDireta,
	OrigemDoacao,
	OrigemTransferencia,
	OrigemOutros,
}
