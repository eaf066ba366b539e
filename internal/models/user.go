package models

import (
	"strings"
	"time"
)

// Stats holds the gamification counters of a user.
type Stats struct {
	Productivity int `json:"productivity"`
	Tasks        int `json:"tasks"`
	Projects     int `json:"projects"`
}

type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Activity is an entry of a user's recent activity log.
type Activity struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type User struct {
	ID               string         `json:"id"`
	FullName         string         `json:"fullName"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	PasswordHash     string         `json:"passwordHash"`
	Department       string         `json:"department"`
	DepartmentValue  string         `json:"departmentValue"`
	Role             string         `json:"role"`
	Position         string         `json:"position"`
	Phone            string         `json:"phone"`
	Location         string         `json:"location"`
	RegistrationDate time.Time      `json:"registrationDate"`
	LastLogin        time.Time      `json:"lastLogin"`
	Avatar           *string        `json:"avatar"`
	IsAdmin          bool           `json:"isAdmin"`
	Stats            Stats          `json:"stats"`
	Skills           []Skill        `json:"skills"`
	RecentActivities []Activity     `json:"recentActivities"`
	Notifications    []Notification `json:"notifications"`
}

// UnreadNotifications counts the notifications not yet marked as read.
func (u User) UnreadNotifications() int {
	count := 0
	for _, n := range u.Notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// MatchesIdentifier reports whether the identifier equals the email, the
// first name or the full name of the user, ignoring case.
func (u User) MatchesIdentifier(identifier string) bool {
	search := strings.ToLower(strings.TrimSpace(identifier))
	if search == "" {
		return false
	}
	return strings.ToLower(u.Email) == search ||
		strings.ToLower(u.Name) == search ||
		strings.ToLower(u.FullName) == search
}

// FieldValue returns the string value of a lookup field by its JSON name.
func (u User) FieldValue(field string) (string, bool) {
	switch field {
	case "id":
		return u.ID, true
	case "email":
		return u.Email, true
	case "name":
		return u.Name, true
	case "fullName":
		return u.FullName, true
	case "department":
		return u.Department, true
	case "departmentValue":
		return u.DepartmentValue, true
	case "role":
		return u.Role, true
	case "position":
		return u.Position, true
	case "phone":
		return u.Phone, true
	case "location":
		return u.Location, true
	}
	return "", false
}

// IsLookupField reports whether FieldValue supports the field.
func IsLookupField(field string) bool {
	_, ok := User{}.FieldValue(field)
	return ok
}

// FirstName returns the first whitespace-delimited token of a full name.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// UserPatch is a sparse update of a user. Nil fields are left untouched.
type UserPatch struct {
	FullName         *string     `json:"fullName,omitempty"`
	Name             *string     `json:"name,omitempty"`
	Email            *string     `json:"email,omitempty"`
	PasswordHash     *string     `json:"-"`
	Department       *string     `json:"department,omitempty"`
	DepartmentValue  *string     `json:"departmentValue,omitempty"`
	Role             *string     `json:"role,omitempty"`
	Position         *string     `json:"position,omitempty"`
	Phone            *string     `json:"phone,omitempty"`
	Location         *string     `json:"location,omitempty"`
	LastLogin        *time.Time  `json:"lastLogin,omitempty"`
	Avatar           *string     `json:"avatar,omitempty"`
	IsAdmin          *bool       `json:"isAdmin,omitempty"`
	Stats            *Stats      `json:"stats,omitempty"`
	Skills           *[]Skill    `json:"skills,omitempty"`
	RecentActivities *[]Activity `json:"recentActivities,omitempty"`
}

// Apply merges the present fields of the patch over the user.
func (p UserPatch) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.DepartmentValue != nil {
		u.DepartmentValue = *p.DepartmentValue
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Position != nil {
		u.Position = *p.Position
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.LastLogin != nil {
		u.LastLogin = *p.LastLogin
	}
	if p.Avatar != nil {
		avatar := *p.Avatar
		u.Avatar = &avatar
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	if p.Stats != nil {
		u.Stats = *p.Stats
	}
	if p.Skills != nil {
		u.Skills = append([]Skill{}, (*p.Skills)...)
	}
	if p.RecentActivities != nil {
		u.RecentActivities = append([]Activity{}, (*p.RecentActivities)...)
	}
}

// IsEmpty reports whether the patch carries no field.
func (p UserPatch) IsEmpty() bool {
	return p == UserPatch{}
}
