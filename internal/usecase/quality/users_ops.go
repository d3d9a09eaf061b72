package quality

import (
	"context"
	"log/slog"
	"strings"

	"pqms/internal/bootstrap/logging"
	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/ports"
)

// UserPayload carries the writable profile fields. is_active and is_staff are read-only.
type UserPayload struct {
	Username    Optional[string] `json:"username"`
	Email       Optional[string] `json:"email"`
	DisplayName Optional[string] `json:"display_name"`
	Department  Optional[string] `json:"department"`
}

type userFields struct {
	Username    string `json:"username" validate:"required,max=150,username"`
	Email       string `json:"email" validate:"omitempty,max=254,email"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Department  string `json:"department" validate:"max=100"`
}

func (p UserPayload) applyTo(f *userFields) {
	p.Username.assign(&f.Username)
	p.Email.assign(&f.Email)
	p.DisplayName.assign(&f.DisplayName)
	p.Department.assign(&f.Department)
}

func (s *Service) CreateUser(ctx context.Context, p UserPayload) (UserView, error) {
	if err := checkContext(ctx); err != nil {
		return UserView{}, err
	}

	var f userFields
	p.applyTo(&f)
	user, err := s.userFromFields(f)
	if err != nil {
		return UserView{}, err
	}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return UserView{}, err
	}
	return userView(created), nil
}

func (s *Service) GetUser(ctx context.Context, id uint64) (UserView, error) {
	if err := checkContext(ctx); err != nil {
		return UserView{}, err
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return userView(user), nil
}

func (s *Service) ListUsers(ctx context.Context, filter ports.UserFilter) ([]UserView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, userView(u))
	}
	return out, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uint64, p UserPayload, partial bool) (UserView, error) {
	if err := checkContext(ctx); err != nil {
		return UserView{}, err
	}
	if !partial && !p.Username.Set {
		return UserView{}, requiredField("username")
	}

	var updated domainquality.User
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.users.GetUser(txCtx, id)
		if err != nil {
			return err
		}
		f := userFields{
			Username:    current.Username,
			Email:       current.Email,
			DisplayName: current.DisplayName,
			Department:  current.Department,
		}
		p.applyTo(&f)
		user, err := s.userFromFields(f)
		if err != nil {
			return err
		}
		user.ID = id
		updated, err = s.users.UpdateUser(txCtx, user)
		return err
	})
	if err != nil {
		return UserView{}, err
	}
	return userView(updated), nil
}

// DeleteUser removes the user; executions they ran keep existing with no executor.
func (s *Service) DeleteUser(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	logging.Info(logging.WithAttrs(ctx, slog.String("component", "usecase.quality")), "user deleted", slog.Uint64("user_id", id))
	return nil
}

func (s *Service) userFromFields(f userFields) (domainquality.User, error) {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	if err := s.check(f, ""); err != nil {
		return domainquality.User{}, err
	}
	return domainquality.User{
		Username:    f.Username,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Department:  f.Department,
	}, nil
}

// resolveExecutor maps the acting username to an active user id. A blank name means anonymous.
func (s *Service) resolveExecutor(ctx context.Context, username string) (*uint64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			return nil, errs.Validationf("executor", "user %q does not exist", username)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.Validationf("executor", "user %q: %w", username, domainquality.ErrInactiveUser)
	}
	return &user.ID, nil
}
