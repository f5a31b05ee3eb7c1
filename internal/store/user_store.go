package store

import (
	"strings"
	"sync"
	"time"

	"exeat-backend/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore holds accounts and their refresh tokens in process memory.
type UserStore interface {
	Create(user model.User) error
	GetByID(id uuid.UUID) (model.User, error)
	GetByEmail(email string) (model.User, error)
	SaveRefreshToken(token model.RefreshToken) error
	GetRefreshToken(token string) (model.RefreshToken, error)
	DeleteRefreshToken(token string) error
	DeleteRefreshTokensForUser(userID uuid.UUID)
}

type userStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]model.User
	byEmail map[string]uuid.UUID // lowercased email -> id
	tokens  map[string]model.RefreshToken
}

// NewUserStore returns an empty in-memory account store.
func NewUserStore() UserStore {
	return &userStore{
		byID:    make(map[uuid.UUID]model.User),
		byEmail: make(map[string]uuid.UUID),
		tokens:  make(map[string]model.RefreshToken),
	}
}

func (s *userStore) Create(user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return ErrDuplicateID
	}
	if _, exists := s.byID[user.ID]; exists {
		return ErrDuplicateID
	}
	s.byID[user.ID] = user
	s.byEmail[key] = user.ID
	return nil
}

func (s *userStore) GetByID(id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

func (s *userStore) GetByEmail(email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *userStore) SaveRefreshToken(token model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.Token]; exists {
		return ErrDuplicateID
	}
	s.tokens[token.Token] = token
	return nil
}

func (s *userStore) GetRefreshToken(token string) (model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[token]
	if !ok {
		return model.RefreshToken{}, ErrNotFound
	}
	return t, nil
}

func (s *userStore) DeleteRefreshToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token]; !ok {
		return ErrNotFound
	}
	delete(s.tokens, token)
	return nil
}

func (s *userStore) DeleteRefreshTokensForUser(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, key)
		}
	}
}

// SeedDemoUsers loads the demo accounts from the frontend walkthrough.
// Every account uses the password "password". Development mode only.
func SeedDemoUsers(s UserStore) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []model.User{
		{
			Name:       "John Student",
			Email:      "student@veritas.edu",
			Role:       model.RoleStudent,
			StudentID:  "VU123456",
			Department: "Computer Science",
		},
		{
			Name:  "Admin User",
			Email: "admin@veritas.edu",
			Role:  model.RoleAdmin,
		},
		{
			Name:  "Security Officer",
			Email: "security@veritas.edu",
			Role:  model.RoleSecurity,
		},
		{
			Name:  "Super Admin",
			Email: "superadmin@veritas.edu",
			Role:  model.RoleSuperAdmin,
		},
	}

	for _, u := range users {
		u.ID = uuid.New()
		u.Password = string(hash)
		u.CreatedAt = time.Now()
		if err := s.Create(u); err != nil {
			return err
		}
	}
	return nil
}
