package entity

import (
	"strings"
	"time"
)

// Roles válidos para User.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Estados de cuenta.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User representa tanto a los autores (clientes) como a los administradores del back-office.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	FirstName    string // prenom
	LastName     string // nom
	Address      string // opcional, multilínea separada por '\n'
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName "Prénom Nom", sin espacios sobrantes si falta alguno.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AddressLines separa la dirección en líneas no vacías.
func (u *User) AddressLines() []string {
	if strings.TrimSpace(u.Address) == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(u.Address, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
