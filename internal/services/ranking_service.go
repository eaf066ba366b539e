package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/repository"
)

// RankingEntry is one position of the XP ranking.
type RankingEntry struct {
	Position        int          `json:"position"`
	UserID          string       `json:"userId"`
	FullName        string       `json:"fullName"`
	Name            string       `json:"name"`
	Department      string       `json:"department"`
	DepartmentValue string       `json:"departmentValue"`
	Role            string       `json:"role"`
	Avatar          *string      `json:"avatar"`
	Stats           models.Stats `json:"stats"`
	XP              int          `json:"xp"`
}

// XP converts stats into experience points.
func XP(stats models.Stats) int {
	return stats.Productivity*constants.XPPerProductivityPoint +
		stats.Tasks*constants.XPPerTask +
		stats.Projects*constants.XPPerProject
}

// RankingService orders users by XP.
type RankingService struct {
	users repository.UserRepository
}

// NewRankingService creates a new RankingService.
func NewRankingService(users repository.UserRepository) *RankingService {
	return &RankingService{users: users}
}

// Ranking returns every user ordered by XP, highest first. Users with equal
// XP keep their storage order. A non-empty department restricts the ranking.
func (s *RankingService) Ranking(ctx context.Context, departmentValue string) ([]RankingEntry, error) {
	var (
		users []models.User
		err   error
	)
	if departmentValue != "" {
		users, err = s.users.FindByDepartment(ctx, departmentValue)
	} else {
		users, err = s.users.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	entries := make([]RankingEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, RankingEntry{
			UserID:          u.ID,
			FullName:        u.FullName,
			Name:            u.Name,
			Department:      u.Department,
			DepartmentValue: u.DepartmentValue,
			Role:            u.Role,
			Avatar:          u.Avatar,
			Stats:           u.Stats,
			XP:              XP(u.Stats),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].XP > entries[j].XP
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries, nil
}
