// Package postgres stores users through gorm. It runs on postgres in
// production and on sqlite for tests and local use.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userDatamodel "github.com/aura-baza/aura-hr/internal/core/datamodel/user"
	"github.com/aura-baza/aura-hr/internal/role"
	"github.com/aura-baza/aura-hr/internal/user"
)

type UserStore struct {
	db *gorm.DB
}

var _ user.Store = (*UserStore)(nil)

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// AutoMigrate creates the users table. Production schemas come from the goose
// migrations; this is for sqlite and tests.
func (s *UserStore) AutoMigrate() error {
	return s.db.AutoMigrate(&userDatamodel.User{})
}

func (s *UserStore) List(ctx context.Context) ([]*user.User, error) {
	var rows []userDatamodel.User
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*user.User, len(rows))
	for i := range rows {
		out[i] = FromDataModel(&rows[i])
	}
	return out, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*user.User, error) {
	var row userDatamodel.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return FromDataModel(&row), nil
}

func (s *UserStore) Insert(ctx context.Context, u *user.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userDatamodel.User{}).Where("id = ?", u.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("check user id: %w", err)
		}
		if count > 0 {
			return user.ErrDuplicateID
		}
		row := ToDataModel(u)
		if err := tx.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return user.ErrDuplicateID
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
}

// Update reads, merges and writes inside one transaction. On postgres the row
// is locked with SELECT ... FOR UPDATE so concurrent merges serialize.
func (s *UserStore) Update(ctx context.Context, id string, apply func(*user.User)) (*user.User, error) {
	var updated *user.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", id)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var row userDatamodel.User
		if err := q.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return user.ErrNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}

		current := FromDataModel(&row)
		apply(current)

		next := ToDataModel(current)
		next.Seq = row.Seq
		next.ID = row.ID
		next.CreatedAt = row.CreatedAt
		if err := tx.Save(next).Error; err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		updated = FromDataModel(next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserStore) Remove(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&userDatamodel.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *UserStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func ToDataModel(u *user.User) *userDatamodel.User {
	roles := make([]userDatamodel.Role, len(u.Roles))
	for i, r := range u.Roles {
		perms := make([]userDatamodel.Permission, len(r.Permissions))
		for j, p := range r.Permissions {
			perms[j] = userDatamodel.Permission{
				ID:          p.ID,
				Name:        p.Name,
				Resource:    p.Resource,
				Action:      string(p.Action),
				Description: p.Description,
			}
		}
		roles[i] = userDatamodel.Role{
			ID:          r.ID,
			Key:         r.Key,
			Name:        r.Name,
			Description: r.Description,
			Permissions: perms,
			Color:       r.Color,
		}
	}
	var lastLogin = u.LastLogin
	if lastLogin != nil {
		t := lastLogin.UTC()
		lastLogin = &t
	}
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Status:       string(u.Status),
		Department:   u.Department,
		Roles:        roles,
		PasswordHash: u.PasswordHash,
		LastLogin:    lastLogin,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func FromDataModel(m *userDatamodel.User) *user.User {
	roles := make([]role.Role, len(m.Roles))
	for i, r := range m.Roles {
		perms := make([]role.Permission, len(r.Permissions))
		for j, p := range r.Permissions {
			perms[j] = role.Permission{
				ID:          p.ID,
				Name:        p.Name,
				Resource:    p.Resource,
				Action:      role.Action(p.Action),
				Description: p.Description,
			}
		}
		roles[i] = role.Role{
			ID:          r.ID,
			Key:         r.Key,
			Name:        r.Name,
			Description: r.Description,
			Permissions: perms,
			Color:       r.Color,
		}
	}
	var lastLogin *time.Time
	if m.LastLogin != nil {
		t := m.LastLogin.UTC()
		lastLogin = &t
	}
	return &user.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Status:       user.Status(m.Status),
		Roles:        roles,
		Department:   m.Department,
		LastLogin:    lastLogin,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		PasswordHash: m.PasswordHash,
	}
}
