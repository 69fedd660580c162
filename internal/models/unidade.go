// internal/models/unidade.go
package models

type UnidadeAdministrativa struct {
	BaseModel
	Codigo *string       `json:"codigo" gorm:"uniqueIndex;size:50"`
	Sigla  string        `json:"sigla" gorm:"size:50"`
	Nome   string        `json:"nome" gorm:"size:255;not null"`
	Status StatusUnidade `json:"status" gorm:"type:varchar(10);default:'ativa';index"`
}

func (UnidadeAdministrativa) TableName() string {
	return "unidades_administrativas"
}

func (u *UnidadeAdministrativa) Ativa() bool {
	return u.Status == StatusUnidadeAtiva
}

func (u *UnidadeAdministrativa) CodigoOuVazio() string {
	if u == nil || u.Codigo == nil {
		return ""
	}
	return *u.Codigo
}

// Descricao renders "codigo – nome", or only the name without a code.
func (u *UnidadeAdministrativa) Descricao() string {
	if u == nil {
		return ""
	}
	if c := u.CodigoOuVazio(); c != "" {
		return c + " – " + u.Nome
	}
	return u.Nome
}
