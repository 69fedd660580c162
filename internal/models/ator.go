// internal/models/ator.go
package models

type Papel string

const (
	PapelGestorPatrimonio   Papel = "GESTOR_PATRIMONIO"
	PapelOperadorInventario Papel = "OPERADOR_INVENTARIO"
)

type RoleSet map[Papel]struct{}

func NewRoleSet(papeis ...Papel) RoleSet {
	rs := make(RoleSet, len(papeis))
	for _, p := range papeis {
		switch p {
		case PapelGestorPatrimonio, PapelOperadorInventario:
			rs[p] = struct{}{}
		}
	}
	return rs
}

func (rs RoleSet) Has(p Papel) bool {
	_, ok := rs[p]
	return ok
}

func (rs RoleSet) List() []Papel {
	out := make([]Papel, 0, len(rs))
	for _, p := range []Papel{PapelGestorPatrimonio, PapelOperadorInventario} {
		if rs.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Ator is the caller of a service operation, resolved once per request.
type Ator struct {
	UsuarioID               uint
	Username                string
	Nome                    string
	UnidadeAdministrativaID *uint
	Papeis                  RoleSet
}

func NewAtor(u *Usuario) *Ator {
	return &Ator{
		UsuarioID:               u.ID,
		Username:                u.Username,
		Nome:                    u.NomeExibicao(),
		UnidadeAdministrativaID: u.UnidadeAdministrativaID,
		Papeis:                  u.Papeis(),
	}
}

func (a *Ator) IsGestor() bool {
	return a != nil && a.Papeis.Has(PapelGestorPatrimonio)
}

// IsOperador is true only for operators without the gestor role.
func (a *Ator) IsOperador() bool {
	return a != nil && a.Papeis.Has(PapelOperadorInventario) && !a.IsGestor()
}

func (a *Ator) PertenceA(unidadeID uint) bool {
	return a != nil && a.UnidadeAdministrativaID != nil && *a.UnidadeAdministrativaID == unidadeID
}
