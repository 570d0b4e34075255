package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"tourbook/internal/models"
	"tourbook/internal/repository"
)

type FakeTourRepo struct {
	mu     sync.Mutex
	nextID int64
	tours  map[int64]models.Tour
	booked map[int64][]int64 // user -> tours
}

func NewFakeTourRepo() *FakeTourRepo {
	return &FakeTourRepo{tours: map[int64]models.Tour{}, booked: map[int64][]int64{}}
}

func (r *FakeTourRepo) Book(userID, tourID int64) {
	r.mu.Lock()
	r.booked[userID] = append(r.booked[userID], tourID)
	r.mu.Unlock()
}

func (r *FakeTourRepo) List(_ context.Context, q models.TourQuery) ([]*models.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Tour{}
	for _, t := range r.tours {
		cp := t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		switch q.Sort {
		case "price":
			return out[i].Price < out[j].Price
		case "-price":
			return out[i].Price > out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	start := min((q.Page-1)*q.Limit, len(out))
	return out[start:min(start+q.Limit, len(out))], nil
}

func (r *FakeTourRepo) get(match func(models.Tour) bool) (*models.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tours {
		if match(t) {
			cp := t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *FakeTourRepo) FindByID(_ context.Context, id int64) (*models.Tour, error) {
	return r.get(func(t models.Tour) bool { return t.ID == id })
}

func (r *FakeTourRepo) FindBySlug(_ context.Context, slug string) (*models.Tour, error) {
	return r.get(func(t models.Tour) bool { return t.Slug == slug })
}

func (r *FakeTourRepo) ListBookedBy(_ context.Context, userID int64) ([]*models.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Tour{}
	for _, id := range r.booked[userID] {
		if t, ok := r.tours[id]; ok {
			cp := t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *FakeTourRepo) Create(_ context.Context, t *models.Tour) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.tours {
		if ex.Slug == t.Slug {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	r.tours[t.ID] = *t
	return nil
}

func (r *FakeTourRepo) Update(_ context.Context, id int64, p *models.TourPatch, slug *string) (*models.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tours[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if slug != nil {
		t.Slug = *slug
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Summary != nil {
		t.Summary = *p.Summary
	}
	r.tours[id] = t
	return &t, nil
}

func (r *FakeTourRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tours[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tours, id)
	return nil
}

type FakeBookingRepo struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]models.Booking
}

func NewFakeBookingRepo() *FakeBookingRepo {
	return &FakeBookingRepo{bookings: map[int64]models.Booking{}}
}

func (r *FakeBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	r.bookings[b.ID] = *b
	return nil
}

func (r *FakeBookingRepo) CreateForPayment(ctx context.Context, b *models.Booking) (bool, error) {
	r.mu.Lock()
	for _, ex := range r.bookings {
		if ex.PaymentID != nil && b.PaymentID != nil && *ex.PaymentID == *b.PaymentID {
			r.mu.Unlock()
			return false, nil
		}
	}
	r.mu.Unlock()
	b.Paid = true
	return true, r.Create(ctx, b)
}

func (r *FakeBookingRepo) FindByID(_ context.Context, id int64) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *FakeBookingRepo) List(_ context.Context) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range r.bookings {
		cp := b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FakeBookingRepo) Update(_ context.Context, id int64, p *models.BookingPatch) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Paid != nil {
		b.Paid = *p.Paid
	}
	r.bookings[id] = b
	return &b, nil
}

func (r *FakeBookingRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

type FakeReviewRepo struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (r *FakeReviewRepo) ListByTour(_ context.Context, tourID int64) ([]*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Review{}
	for _, rv := range r.reviews {
		if rv.TourID == tourID {
			cp := rv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *FakeReviewRepo) Create(_ context.Context, rv *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.reviews {
		if ex.TourID == rv.TourID && ex.UserID == rv.UserID {
			return repository.ErrDuplicate
		}
	}
	rv.ID = int64(len(r.reviews) + 1)
	rv.CreatedAt = time.Now()
	r.reviews = append(r.reviews, *rv)
	return nil
}
