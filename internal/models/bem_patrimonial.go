// internal/models/bem_patrimonial.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BemPatrimonial struct {
	BaseModel
	Nome                    string          `json:"nome" gorm:"size:255;not null"`
	Descricao               string          `json:"descricao" gorm:"type:text;not null"`
	Marca                   string          `json:"marca" gorm:"size:255"`
	Modelo                  string          `json:"modelo" gorm:"size:255"`
	Quantidade              int             `json:"quantidade" gorm:"default:1;not null"`
	ValorUnitario           decimal.Decimal `json:"valor_unitario" gorm:"type:decimal(16,2);not null"`
	DataCompraEntrega       *time.Time      `json:"data_compra_entrega" gorm:"type:date"`
	Origem                  OrigemBem       `json:"origem" gorm:"type:varchar(30)"`
	NumeroProcesso          string          `json:"numero_processo" gorm:"size:100"`
	Localizacao             string          `json:"localizacao" gorm:"size:255"`
	UnidadeAdministrativaID *uint           `json:"unidade_administrativa_id" gorm:"index"`
	Status                  StatusBem       `json:"status" gorm:"type:varchar(30);default:'aguardando_aprovacao';index"`
	NumeroPatrimonial       *string         `json:"numero_patrimonial" gorm:"uniqueIndex;size:100"`
	NumeroFormatoAntigo     bool            `json:"numero_formato_antigo" gorm:"default:false"`
	SemNumeracao            bool            `json:"sem_numeracao" gorm:"default:false"`
	CriadoPorID             uint            `json:"criado_por_id" gorm:"index"`

	// Relationships
	UnidadeAdministrativa *UnidadeAdministrativa `json:"unidade_administrativa,omitempty" gorm:"foreignKey:UnidadeAdministrativaID"`
	CriadoPor             *Usuario               `json:"criado_por,omitempty" gorm:"foreignKey:CriadoPorID"`
}

func (BemPatrimonial) TableName() string {
	return "bens_patrimoniais"
}

func (b *BemPatrimonial) Numero() string {
	if b == nil || b.NumeroPatrimonial == nil {
		return ""
	}
	return *b.NumeroPatrimonial
}

// Identificacao renders "numero – nome", or only the name without a number.
func (b *BemPatrimonial) Identificacao() string {
	if b == nil {
		return ""
	}
	if n := b.Numero(); n != "" {
		return n + " – " + b.Nome
	}
	return b.Nome
}

type StatusBemPatrimonial struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	BemPatrimonialID uint      `json:"bem_patrimonial_id" gorm:"not null;index"`
	Status           StatusBem `json:"status" gorm:"type:varchar(30);not null"`
	Observacao       string    `json:"observacao" gorm:"type:text"`
	AtualizadoPorID  *uint     `json:"atualizado_por_id"`
	CriadoEm         time.Time `json:"criado_em" gorm:"column:criado_em;autoCreateTime"`

	// Relationships
	AtualizadoPor *Usuario `json:"atualizado_por,omitempty" gorm:"foreignKey:AtualizadoPorID"`
}

func (StatusBemPatrimonial) TableName() string {
	return "status_bens_patrimoniais"
}
