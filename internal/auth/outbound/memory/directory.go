package memory

import (
	"context"
	"sync"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

// Directory is an in-memory user directory with a unique email index.
// Emails are matched exactly.
type Directory struct {
	mu      sync.RWMutex
	byID    map[int64]entity.User
	byEmail map[string]int64
}

func NewDirectory() *Directory {
	return &Directory{
		byID:    make(map[int64]entity.User),
		byEmail: make(map[string]int64),
	}
}

func (d *Directory) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	u := d.byID[id]
	return &u, nil
}

func (d *Directory) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byID[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &u, nil
}

func (d *Directory) CreateUser(_ context.Context, user entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.byEmail[user.Email]; taken {
		return goerror.ErrConflict
	}
	if _, taken := d.byID[user.ID]; taken {
		return goerror.ErrConflict
	}

	d.byID[user.ID] = user
	d.byEmail[user.Email] = user.ID

	return nil
}

func (d *Directory) UpdateProfile(_ context.Context, id int64, p entity.Profile) (*entity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.byID[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	if owner, taken := d.byEmail[p.Email]; taken && owner != id {
		return nil, goerror.ErrConflict
	}

	delete(d.byEmail, u.Email)
	u.Name, u.Email, u.Phone, u.Address = p.Name, p.Email, p.Phone, p.Address
	d.byID[id] = u
	d.byEmail[u.Email] = id

	return &u, nil
}
