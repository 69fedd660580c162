// internal/models/movimentacao.go
package models

type MovimentacaoBemPatrimonial struct {
	BaseModel
	BemPatrimonialID uint               `json:"bem_patrimonial_id" gorm:"not null;index"`
	UnidadeOrigemID  uint               `json:"unidade_origem_id" gorm:"not null;index"`
	UnidadeDestinoID uint               `json:"unidade_destino_id" gorm:"not null;index"`
	Status           StatusMovimentacao `json:"status" gorm:"type:varchar(20);default:'enviada';not null;index"`
	Observacao       string             `json:"observacao" gorm:"type:text"`
	SolicitadoPorID  uint               `json:"solicitado_por_id" gorm:"not null;index"`
	AprovadoPorID    *uint              `json:"aprovado_por_id"`
	RejeitadoPorID   *uint              `json:"rejeitado_por_id"`
	CanceladoPorID   *uint              `json:"cancelado_por_id"`
	NumeroCIMBPM     *string            `json:"numero_cimbpm" gorm:"column:numero_cimbpm;uniqueIndex;size:30"`
	DocumentoCIMBPM  string             `json:"documento_cimbpm,omitempty" gorm:"column:documento_cimbpm;size:255"`

	// Relationships
	BemPatrimonial *BemPatrimonial        `json:"bem_patrimonial,omitempty" gorm:"foreignKey:BemPatrimonialID"`
	UnidadeOrigem  *UnidadeAdministrativa `json:"unidade_origem,omitempty" gorm:"foreignKey:UnidadeOrigemID"`
	UnidadeDestino *UnidadeAdministrativa `json:"unidade_destino,omitempty" gorm:"foreignKey:UnidadeDestinoID"`
	SolicitadoPor  *Usuario               `json:"solicitado_por,omitempty" gorm:"foreignKey:SolicitadoPorID"`
	AprovadoPor    *Usuario               `json:"aprovado_por,omitempty" gorm:"foreignKey:AprovadoPorID"`
	RejeitadoPor   *Usuario               `json:"rejeitado_por,omitempty" gorm:"foreignKey:RejeitadoPorID"`
	CanceladoPor   *Usuario               `json:"cancelado_por,omitempty" gorm:"foreignKey:CanceladoPorID"`
}

func (MovimentacaoBemPatrimonial) TableName() string {
	return "movimentacoes_bens_patrimoniais"
}

func (m *MovimentacaoBemPatrimonial) Numero() string {
	if m == nil || m.NumeroCIMBPM == nil {
		return ""
	}
	return *m.NumeroCIMBPM
}
