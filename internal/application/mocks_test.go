package application

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/glowcast/glowcast/internal/domain/entity"
	repo "github.com/glowcast/glowcast/internal/domain/repository"
)

// fakeUserRepo is an in-memory UserRepository with the same semantics the
// postgres implementation gets from its unique indexes and guarded updates:
// duplicate detection at write time and atomic balance arithmetic.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.users {
		switch {
		case ex.Username == u.Username:
			return &repo.DuplicateError{Field: "username"}
		case ex.UsernameLower == u.UsernameLower:
			return &repo.DuplicateError{Field: "username_lower"}
		case ex.Email == u.Email:
			return &repo.DuplicateError{Field: "email"}
		}
	}
	f.nextID++
	u.ID = "u" + strconv.Itoa(f.nextID)
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) find(match func(*entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) GetByStreamKey(_ context.Context, key string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.StreamKey != "" && u.StreamKey == key })
}

func (f *fakeUserRepo) GetByResetToken(_ context.Context, token string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.ResetToken != "" && u.ResetToken == token })
}

func (f *fakeUserRepo) locked(id string, fn func(*entity.User) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	return fn(u)
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, p entity.StreamProfile) error {
	return f.locked(id, func(u *entity.User) error {
		u.Stream = p
		return nil
	})
}

func (f *fakeUserRepo) UpdatePic(_ context.Context, id string, pic string) error {
	return f.locked(id, func(u *entity.User) error {
		u.Pic = pic
		return nil
	})
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id string, hash, salt string) error {
	return f.locked(id, func(u *entity.User) error {
		u.PasswordHash, u.PasswordSalt = hash, salt
		return nil
	})
}

func (f *fakeUserRepo) UpdateClientIP(_ context.Context, id string, ip string) error {
	return f.locked(id, func(u *entity.User) error {
		u.ClientIP = ip
		return nil
	})
}

func (f *fakeUserRepo) SetStreamKey(_ context.Context, id string, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.users {
		if ex.ID != id && ex.StreamKey == key {
			return &repo.DuplicateError{Field: "stream_key"}
		}
	}
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.StreamKey = key
	return nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, id string, token string, expires int64) error {
	return f.locked(id, func(u *entity.User) error {
		u.ResetToken = token
		u.ResetExpires = time.Unix(expires, 0)
		return nil
	})
}

func (f *fakeUserRepo) ClearResetToken(_ context.Context, id string) error {
	return f.locked(id, func(u *entity.User) error {
		u.ResetToken = ""
		return nil
	})
}

func (f *fakeUserRepo) CreditPoints(_ context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := f.locked(id, func(u *entity.User) error {
		u.Points += amount
		u.Stream.Received += amount
		balance = u.Points
		return nil
	})
	return balance, err
}

func (f *fakeUserRepo) DebitPoints(_ context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := f.locked(id, func(u *entity.User) error {
		if u.Points < amount {
			return repo.ErrInsufficientPoints
		}
		u.Points -= amount
		balance = u.Points
		return nil
	})
	return balance, err
}

func (f *fakeUserRepo) RefundPoints(_ context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := f.locked(id, func(u *entity.User) error {
		u.Points += amount
		balance = u.Points
		return nil
	})
	return balance, err
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)
