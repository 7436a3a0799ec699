package repository

import (
	"context"
	"errors"

	"quill/internal/models"

	"gorm.io/gorm"
)

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	GetDefault(ctx context.Context) (*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	// InsertRoles applies the provisioning table. It is idempotent: each
	// named role's bitmask is reset to exactly the configured set and the
	// single default flag is fixed, rather than accumulating across runs.
	InsertRoles(ctx context.Context, table []models.RoleDefinition) error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository returns a new RoleRepository implementation.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Role", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &role, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Role", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &role, nil
}

func (r *roleRepository) GetDefault(ctx context.Context) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where(`"default" = ?`, true).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Role", "default")
		}
		return nil, models.NewInternalError(err)
	}
	return &role, nil
}

func (r *roleRepository) Update(ctx context.Context, role *models.Role) error {
	if err := r.db.WithContext(ctx).Save(role).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *roleRepository) InsertRoles(ctx context.Context, table []models.RoleDefinition) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range table {
			var role models.Role
			err := tx.Where("name = ?", def.Name).First(&role).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				role = models.Role{Name: def.Name}
			} else if err != nil {
				return err
			}

			role.ResetPermissions()
			for _, perm := range def.Permissions {
				role.AddPermission(perm)
			}
			role.Default = def.Default

			if err := tx.Save(&role).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
