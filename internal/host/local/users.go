package local

import (
	"github.com/google/uuid"

	"github.com/dshills/holonet/internal/host"
)

// User is a connected account.
type User struct {
	id   string
	name string
	gm   bool
}

// NewUser creates a user with a fresh id.
func NewUser(name string, gm bool) *User {
	return &User{id: uuid.NewString(), name: name, gm: gm}
}

// ID implements host.User.
func (u *User) ID() string { return u.id }

// Name implements host.User.
func (u *User) Name() string { return u.name }

// IsGM implements host.User.
func (u *User) IsGM() bool { return u.gm }

// CurrentUser implements host.Users.
func (h *Host) CurrentUser() host.User {
	h.userMu.RLock()
	defer h.userMu.RUnlock()
	return h.user
}

// SetUser switches the acting user.
func (h *Host) SetUser(u *User) {
	h.userMu.Lock()
	defer h.userMu.Unlock()
	h.user = u
}
