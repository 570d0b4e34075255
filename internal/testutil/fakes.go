// Package testutil содержит in-memory реализации хранилищ и почты для тестов.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tourbook/internal/models"
	"tourbook/internal/repository"
)

// Clock - управляемые часы.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// FakeUserRepo хранит копии пользователей: изменения видны только после Save.
type FakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
	Saves  int
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: map[int64]models.User{}}
}

func (r *FakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, ex := range r.users {
		if ex.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.Active = true
	u.CreatedAt = time.Now()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	r.users[u.ID] = *u
	return nil
}

// Put кладёт пользователя как есть (например, админа).
func (r *FakeUserRepo) Put(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	}
	u.Active = true
	r.users[u.ID] = u
	return &u
}

func (r *FakeUserRepo) Save(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[u.ID] = *u
	r.Saves++
	return nil
}

// Delete эмулирует удалённую учётную запись.
func (r *FakeUserRepo) Delete(id int64) {
	r.mu.Lock()
	delete(r.users, id)
	r.mu.Unlock()
}

// Get возвращает сохранённое состояние без фильтров.
func (r *FakeUserRepo) Get(id int64) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *FakeUserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Active && match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *FakeUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *FakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *FakeUserRepo) FindByResetToken(_ context.Context, hash string, now time.Time) (*models.User, error) {
	return r.find(func(u models.User) bool {
		return u.PasswordResetToken != nil && *u.PasswordResetToken == hash &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now)
	})
}

func (r *FakeUserRepo) List(_ context.Context, limit, offset int) ([]*models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

type SentMail struct {
	To  string
	URL string
}

// FakeMailer запоминает письма; если Err задан, отправка падает.
type FakeMailer struct {
	mu      sync.Mutex
	Err     error
	Welcome []SentMail
	Resets  []SentMail
}

func (m *FakeMailer) SendWelcome(_ context.Context, u *models.User, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Welcome = append(m.Welcome, SentMail{To: u.Email, URL: url})
	return nil
}

func (m *FakeMailer) SendPasswordReset(_ context.Context, u *models.User, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Resets = append(m.Resets, SentMail{To: u.Email, URL: url})
	return nil
}

// LastReset - ссылка из последнего письма сброса.
func (m *FakeMailer) LastReset() (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Resets) == 0 {
		return SentMail{}, false
	}
	return m.Resets[len(m.Resets)-1], true
}
