// internal/models/user.go
package models

import (
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type Usuario struct {
	BaseModel
	Username                string         `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email                   string         `json:"email" gorm:"size:255;index"`
	Nome                    string         `json:"nome" gorm:"size:255"`
	RF                      string         `json:"rf" gorm:"column:rf;size:20"`
	PasswordHash            string         `json:"-" gorm:"size:255;not null"`
	IsActive                bool           `json:"is_active" gorm:"default:true"`
	IsSuperuser             bool           `json:"is_superuser" gorm:"default:false"`
	Grupos                  pq.StringArray `json:"grupos" gorm:"type:text[]"`
	UnidadeAdministrativaID *uint          `json:"unidade_administrativa_id" gorm:"index"`
	LastLoginAt             *time.Time     `json:"last_login_at"`

	// Relationships
	UnidadeAdministrativa *UnidadeAdministrativa `json:"unidade_administrativa,omitempty" gorm:"foreignKey:UnidadeAdministrativaID"`
}

func (Usuario) TableName() string {
	return "usuarios"
}

func (u *Usuario) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *Usuario) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// NomeExibicao falls back to the username when no name is registered.
func (u *Usuario) NomeExibicao() string {
	if u == nil {
		return ""
	}
	if u.Nome != "" {
		return u.Nome
	}
	return u.Username
}

func (u *Usuario) Papeis() RoleSet {
	if u.IsSuperuser {
		return NewRoleSet(PapelGestorPatrimonio, PapelOperadorInventario)
	}
	papeis := make([]Papel, 0, len(u.Grupos))
	for _, g := range u.Grupos {
		papeis = append(papeis, Papel(g))
	}
	return NewRoleSet(papeis...)
}
