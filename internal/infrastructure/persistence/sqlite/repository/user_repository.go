package repository

import (
	"context"

	"gorm.io/gorm"

	"pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/ports"
)

type UserRepository struct {
	conn
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{conn{db: db}}
}

func (r *UserRepository) CreateUser(ctx context.Context, u quality.User) (quality.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.User{}, err
	}

	row := userRow(u)
	row.IsActive = true
	row.IsStaff = false
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return quality.User{}, errs.Validationf("username", "user %q already exists", u.Username)
		}
		return quality.User{}, errs.Wrap(err, "insert user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) GetUser(ctx context.Context, id uint64) (quality.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.User{}, err
	}

	var row model.User
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.User{}, notFoundOr(err, "user %d", id)
	}
	return mapUser(row), nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (quality.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.User{}, err
	}

	var row model.User
	if err := db.Where("username = ?", username).Take(&row).Error; err != nil {
		return quality.User{}, notFoundOr(err, "user %q", username)
	}
	return mapUser(row), nil
}

func (r *UserRepository) ListUsers(ctx context.Context, filter ports.UserFilter) ([]quality.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := searchAny(db.Model(&model.User{}), filter.Search, "username", "display_name", "email", "department")

	var rows []model.User
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query users")
	}

	items := make([]quality.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapUser(row))
	}
	return items, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, u quality.User) (quality.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.User{}, err
	}

	result := db.Model(&model.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"username":     u.Username,
			"email":        u.Email,
			"display_name": u.DisplayName,
			"department":   u.Department,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return quality.User{}, errs.Validationf("username", "user %q already exists", u.Username)
		}
		return quality.User{}, errs.Wrap(result.Error, "update user")
	}
	if result.RowsAffected == 0 {
		return quality.User{}, errs.NotFoundf("user %d", u.ID)
	}
	return r.GetUser(ctx, u.ID)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uint64) error {
	return r.inTx(ctx, func(db *gorm.DB) error {
		if err := db.Model(&model.Execution{}).Where("executor_id = ?", id).Update("executor_id", nil).Error; err != nil {
			return errs.Wrap(err, "unbind executions from user")
		}

		result := db.Where("id = ?", id).Delete(&model.User{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete user")
		}
		if result.RowsAffected == 0 {
			return errs.NotFoundf("user %d", id)
		}
		return nil
	})
}

func userRow(u quality.User) model.User {
	return model.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Department:  u.Department,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
	}
}

func mapUser(row model.User) quality.User {
	return quality.User{
		ID:          row.ID,
		Username:    row.Username,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		Department:  row.Department,
		IsActive:    row.IsActive,
		IsStaff:     row.IsStaff,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
