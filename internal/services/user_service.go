package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/metrics"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/repository"
	"github.com/conectahub/intranet-api/internal/session"
)

// UserServiceConfig holds the account settings of the user service.
type UserServiceConfig struct {
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
}

// UserService handles account related business logic.
type UserService struct {
	users   repository.UserRepository
	cfg     UserServiceConfig
	log     *logger.Logger
	metrics *metrics.ServiceMetrics
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, cfg UserServiceConfig, log *logger.Logger, m *metrics.ServiceMetrics) *UserService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		users:   users,
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// CreateUserInput represents the information needed to create a user.
type CreateUserInput struct {
	FullName        string
	Email           string
	Password        string
	Department      string
	DepartmentValue string
	Role            string
	Position        string
	Phone           string
	Location        string
	Avatar          *string
	IsAdmin         bool
	Skills          []models.Skill
}

// CreateUser validates the email and stores a new account.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (user *models.User, err error) {
	defer func() { s.metrics.Observe("create_user", err) }()

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	taken, err := s.users.EmailExists(ctx, email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fullName := strings.TrimSpace(input.FullName)
	created := &models.User{
		ID:               newID(),
		FullName:         fullName,
		Name:             models.FirstName(fullName),
		Email:            email,
		PasswordHash:     hash,
		Department:       input.Department,
		DepartmentValue:  input.DepartmentValue,
		Role:             withDefault(input.Role, constants.DefaultRole),
		Position:         withDefault(input.Position, constants.DefaultPosition),
		Phone:            input.Phone,
		Location:         input.Location,
		RegistrationDate: now,
		LastLogin:        now,
		Avatar:           input.Avatar,
		IsAdmin:          input.IsAdmin,
		Stats:            models.Stats{},
		Skills:           append([]models.Skill{}, input.Skills...),
		RecentActivities: []models.Activity{},
		Notifications:    []models.Notification{},
	}

	if err := s.users.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info(s.log.WithUserID(ctx, created.ID), "user created")
	return created, nil
}

// FindUser matches the identifier against email, first name and full name,
// ignoring case. A miss returns nil without error.
func (s *UserService) FindUser(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserBy matches a single field. The id field is exact, the others
// ignore case. A miss returns nil without error.
func (s *UserService) FindUserBy(ctx context.Context, field, value string) (*models.User, error) {
	if !models.IsLookupField(field) {
		return nil, ErrInvalidLookupField
	}
	user, err := s.users.FindByField(ctx, field, value)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetUser returns a user by id or ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ValidateLogin checks the credentials and stamps lastLogin.
func (s *UserService) ValidateLogin(ctx context.Context, identifier, password string) (user *models.User, err error) {
	defer func() { s.metrics.Observe("validate_login", err) }()

	found, err := s.FindUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	now := s.now()
	updated, err := s.users.Update(ctx, found.ID, repository.SetUser(models.UserPatch{LastLogin: &now}))
	if err != nil {
		return nil, fmt.Errorf("failed to stamp last login: %w", err)
	}
	return updated, nil
}

// Login stores a snapshot of the user in the session.
func (s *UserService) Login(sess session.Store, user models.User) error {
	if err := sess.Login(user); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Logout drops the session snapshot.
func (s *UserService) Logout(sess session.Store) error {
	if err := sess.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the session snapshot or ErrNotLoggedIn.
func (s *UserService) CurrentUser(sess session.Store) (*models.User, error) {
	user, err := sess.Current()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	return user, nil
}

// RefreshSession reloads the snapshot when userID is the logged-in user.
func (s *UserService) RefreshSession(ctx context.Context, sess session.Store, userID string) error {
	if sess == nil {
		return nil
	}
	current, err := sess.Current()
	if err != nil || current == nil || current.ID != userID {
		return err
	}
	fresh, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.Login(sess, *fresh)
}

// UpdateUserInput is a sparse update plus an optional new password.
type UpdateUserInput struct {
	models.UserPatch
	Password *string `json:"password,omitempty"`
}

// UpdateUser shallow-merges the present fields over the stored user. An
// email change is checked for duplicates and a new password is hashed.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (user *models.User, err error) {
	defer func() { s.metrics.Observe("update_user", err) }()

	patch := input.UserPatch
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		patch.Email = &email
	}
	if input.Password != nil {
		hash, err := s.hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.users.Update(ctx, id, repository.SetUser(patch))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrDuplicateEmail
	case err != nil:
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// DeleteUser removes the user. Tasks and messages referencing it are kept.
func (s *UserService) DeleteUser(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.Observe("delete_user", err) }()

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.log.Info(s.log.WithUserID(ctx, id), "user deleted")
	return nil
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// EnsureDefaultAdmin creates the well-known administrator when absent. It
// reports whether an account was created.
func (s *UserService) EnsureDefaultAdmin(ctx context.Context) (bool, error) {
	existing, err := s.FindUserBy(ctx, "email", s.cfg.AdminEmail)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	_, err = s.CreateUser(ctx, CreateUserInput{
		FullName:        "Administrador",
		Email:           s.cfg.AdminEmail,
		Password:        s.cfg.AdminPassword,
		Department:      "Administração",
		DepartmentValue: "admin",
		Role:            "Administrador",
		Position:        "Administrador do Sistema",
		Phone:           "(00) 00000-0000",
		Location:        "Sistema",
		IsAdmin:         true,
	})
	if err != nil {
		return false, err
	}
	s.log.Info(ctx, "default admin created")
	return true, nil
}

var exampleUsers = []CreateUserInput{
	{
		FullName:        "João Silva",
		Email:           "joao@conectahub.com",
		Password:        "123456",
		Department:      "Tecnologia",
		DepartmentValue: "ti",
		Role:            "Desenvolvedor",
	},
	{
		FullName:        "Maria Santos",
		Email:           "maria@conectahub.com",
		Password:        "123456",
		Department:      "Recursos Humanos",
		DepartmentValue: "rh",
		Role:            "Analista de RH",
	},
}

// SeedExamples creates the example accounts that do not exist yet and
// returns how many were created.
func (s *UserService) SeedExamples(ctx context.Context) (int, error) {
	created := 0
	for _, input := range exampleUsers {
		_, err := s.CreateUser(ctx, input)
		if errors.Is(err, ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hash), nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
