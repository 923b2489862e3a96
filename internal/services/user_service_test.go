package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
	"github.com/ofertasgt/go-deals-backend/internal/repo"
)

// ----- Fakes -----

type fakeUserRepo struct {
	users map[int64]domain.User

	upserts int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User)}
}

func (r *fakeUserRepo) UpsertUser(ctx context.Context, db *gorm.DB, u domain.User) error {
	r.upserts++
	if existing, ok := r.users[u.TelegramID]; ok {
		existing.Name = u.Name
		existing.Username = u.Username
		r.users[u.TelegramID] = existing
		return nil
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	r.users[u.TelegramID] = u
	return nil
}

func (r *fakeUserRepo) GetUser(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.User, error) {
	u, ok := r.users[telegramID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) UpdateUserName(ctx context.Context, db *gorm.DB, telegramID int64, name string) error {
	u := r.users[telegramID]
	u.Name = name
	r.users[telegramID] = u
	return nil
}

func (r *fakeUserRepo) MarkSetupComplete(ctx context.Context, db *gorm.DB, telegramID int64) error {
	u := r.users[telegramID]
	u.SetupComplete = true
	r.users[telegramID] = u
	return nil
}

func (r *fakeUserRepo) SetLastSummaryMessageID(ctx context.Context, db *gorm.DB, telegramID int64, messageID *int) error {
	u := r.users[telegramID]
	u.LastSummaryMessageID = messageID
	r.users[telegramID] = u
	return nil
}

type fakePrefInit struct {
	calls []int64
	err   error
}

func (p *fakePrefInit) EnsureDefaults(ctx context.Context, telegramID int64) error {
	p.calls = append(p.calls, telegramID)
	return p.err
}

// ----- Tests -----

func TestRegister_UpsertsProfileAndSeedsPreferences(t *testing.T) {
	r := newFakeUserRepo()
	prefs := &fakePrefInit{}
	s := NewUserService(nil, r, prefs)

	err := s.Register(context.Background(), domain.User{TelegramID: 1, Name: "Ana"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if r.upserts != 1 {
		t.Errorf("upserts = %d", r.upserts)
	}
	if len(prefs.calls) != 1 || prefs.calls[0] != 1 {
		t.Errorf("preference seeding calls = %v", prefs.calls)
	}
}

func TestGet_TranslatesMissingUser(t *testing.T) {
	s := NewUserService(nil, newFakeUserRepo(), &fakePrefInit{})
	if _, err := s.Get(context.Background(), 404); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestIsAdmin(t *testing.T) {
	r := newFakeUserRepo()
	r.users[1] = domain.User{TelegramID: 1, Role: domain.RoleAdmin}
	r.users[2] = domain.User{TelegramID: 2, Role: domain.RoleUser}
	s := NewUserService(nil, r, &fakePrefInit{})
	ctx := context.Background()

	if !s.IsAdmin(ctx, 1) {
		t.Error("admin not recognized")
	}
	if s.IsAdmin(ctx, 2) {
		t.Error("regular user treated as admin")
	}
	if s.IsAdmin(ctx, 3) {
		t.Error("unknown user treated as admin")
	}
}
