package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/repository"
	"github.com/conectahub/intranet-api/internal/session"
)

// Snapshot is a full copy of the persisted collections. On import a nil
// collection is left untouched.
type Snapshot struct {
	Users      []models.User    `json:"users"`
	Messages   []models.Message `json:"messages"`
	Tasks      []models.Task    `json:"tasks"`
	ExportDate time.Time        `json:"exportDate"`
}

// Stats summarizes the stored data.
type Stats struct {
	TotalUsers    int    `json:"totalUsers"`
	TotalMessages int    `json:"totalMessages"`
	TotalTasks    int    `json:"totalTasks"`
	ActiveUser    int    `json:"activeUser"`
	Mode          string `json:"mode"`
}

// DataService exports, imports and wipes the whole data set.
type DataService struct {
	storage *repository.Storage
	log     *logger.Logger
	now     func() time.Time
}

// NewDataService creates a new DataService.
func NewDataService(storage *repository.Storage, log *logger.Logger) *DataService {
	return &DataService{
		storage: storage,
		log:     log,
		now:     time.Now,
	}
}

// Export returns every collection with the export timestamp.
func (s *DataService) Export(ctx context.Context) (*Snapshot, error) {
	users, err := s.storage.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	messages, err := s.storage.Messages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export messages: %w", err)
	}
	tasks, err := s.storage.Tasks.List(ctx, models.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to export tasks: %w", err)
	}
	return &Snapshot{
		Users:      users,
		Messages:   messages,
		Tasks:      tasks,
		ExportDate: s.now(),
	}, nil
}

// Import overwrites every collection present in the snapshot. Collections
// are written independently; the failures of all of them are returned.
func (s *DataService) Import(ctx context.Context, data Snapshot) error {
	var errs error
	if data.Users != nil {
		if err := s.storage.Users.ReplaceAll(ctx, data.Users); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to import users: %w", err))
		}
	}
	if data.Messages != nil {
		if err := s.storage.Messages.ReplaceAll(ctx, data.Messages); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to import messages: %w", err))
		}
	}
	if data.Tasks != nil {
		if err := s.storage.Tasks.ReplaceAll(ctx, data.Tasks); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to import tasks: %w", err))
		}
	}
	if errs == nil {
		s.log.Info(s.log.WithFields(ctx, map[string]any{
			"users":    len(data.Users),
			"messages": len(data.Messages),
			"tasks":    len(data.Tasks),
		}), "data imported")
	}
	return errs
}

// Stats counts the stored records and reports whether a user is logged in.
func (s *DataService) Stats(ctx context.Context, sess session.Store) (*Stats, error) {
	snapshot, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		TotalUsers:    len(snapshot.Users),
		TotalMessages: len(snapshot.Messages),
		TotalTasks:    len(snapshot.Tasks),
		Mode:          s.storage.Mode,
	}
	if sess != nil {
		if current, err := sess.Current(); err == nil && current != nil {
			stats.ActiveUser = 1
		}
	}
	return stats, nil
}

// ClearAll wipes every collection and the session.
func (s *DataService) ClearAll(ctx context.Context, sess session.Store) error {
	var errs error
	if err := s.storage.Clear(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to clear storage: %w", err))
	}
	if sess != nil {
		if err := sess.Logout(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to clear session: %w", err))
		}
	}
	if errs == nil {
		s.log.Warn(ctx, "all data cleared", nil)
	}
	return errs
}
