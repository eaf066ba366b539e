package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gin-contrib/sessions"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/models"
)

// Store holds the active-user snapshot. The snapshot is a copy of the user
// taken at login or after an explicit refresh, never a live reference, and
// never carries the password hash.
type Store interface {
	// Current returns the snapshot, or nil when nobody is logged in.
	Current() (*models.User, error)

	// Login replaces the snapshot and its companion values.
	Login(user models.User) error

	// Logout drops the snapshot.
	Logout() error

	// DisplayName returns the stored first name without decoding the snapshot.
	DisplayName() string

	// IsAdmin returns the stored admin flag without decoding the snapshot.
	IsAdmin() bool
}

// GinStore keeps the snapshot in a gin-contrib session.
type GinStore struct {
	session sessions.Session
}

func NewGinStore(s sessions.Session) *GinStore {
	return &GinStore{session: s}
}

func (g *GinStore) Current() (*models.User, error) {
	raw, ok := g.session.Get(constants.SessionKeyCurrentUser).(string)
	if !ok || raw == "" {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decoding session snapshot: %w", err)
	}
	return &user, nil
}

func (g *GinStore) Login(user models.User) error {
	data, err := encodeSnapshot(user)
	if err != nil {
		return err
	}
	g.session.Set(constants.SessionKeyCurrentUser, string(data))
	g.session.Set(constants.SessionKeyUserName, user.Name)
	g.session.Set(constants.SessionKeyIsAdmin, formatBool(user.IsAdmin))
	return g.session.Save()
}

func (g *GinStore) Logout() error {
	g.session.Delete(constants.SessionKeyCurrentUser)
	g.session.Delete(constants.SessionKeyUserName)
	g.session.Delete(constants.SessionKeyIsAdmin)
	return g.session.Save()
}

func (g *GinStore) DisplayName() string {
	name, _ := g.session.Get(constants.SessionKeyUserName).(string)
	return name
}

func (g *GinStore) IsAdmin() bool {
	flag, _ := g.session.Get(constants.SessionKeyIsAdmin).(string)
	return flag == "true"
}

// MemoryStore is a process-local Store used outside HTTP requests.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot []byte
	name     string
	isAdmin  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Current() (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal(m.snapshot, &user); err != nil {
		return nil, fmt.Errorf("decoding session snapshot: %w", err)
	}
	return &user, nil
}

func (m *MemoryStore) Login(user models.User) error {
	data, err := encodeSnapshot(user)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = data
	m.name = user.Name
	m.isAdmin = user.IsAdmin
	return nil
}

func (m *MemoryStore) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	m.name = ""
	m.isAdmin = false
	return nil
}

func (m *MemoryStore) DisplayName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

func (m *MemoryStore) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isAdmin
}

// encodeSnapshot serializes the user without the password hash. Cookie
// sessions are signed, not encrypted, so the hash must never enter them.
func encodeSnapshot(user models.User) ([]byte, error) {
	user.PasswordHash = ""
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encoding session snapshot: %w", err)
	}
	return data, nil
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
