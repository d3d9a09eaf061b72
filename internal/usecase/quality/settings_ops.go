package quality

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pqms/internal/bootstrap/logging"
	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
)

const settingsKey = "system_settings"

type SettingsPayload struct {
	SystemName            Optional[string] `json:"system_name"`
	Language              Optional[string] `json:"language"`
	Timezone              Optional[string] `json:"timezone"`
	DateFormat            Optional[string] `json:"date_format"`
	EmailNotifications    Optional[bool]   `json:"email_notifications"`
	TaskNotifications     Optional[bool]   `json:"task_notifications"`
	ReportNotifications   Optional[bool]   `json:"report_notifications"`
	SystemAlerts          Optional[bool]   `json:"system_alerts"`
	TwoFactorAuth         Optional[bool]   `json:"two_factor_auth"`
	SessionTimeoutMinutes Optional[int]    `json:"session_timeout_minutes"`
	PasswordExpiryDays    Optional[int]    `json:"password_expiry_days"`
	AutoBackup            Optional[bool]   `json:"auto_backup"`
	BackupFrequency       Optional[string] `json:"backup_frequency"`
}

func (p SettingsPayload) applyTo(st *domainquality.SystemSettings) {
	p.SystemName.assign(&st.SystemName)
	p.Language.assign(&st.Language)
	p.Timezone.assign(&st.Timezone)
	p.DateFormat.assign(&st.DateFormat)
	p.EmailNotifications.assign(&st.EmailNotifications)
	p.TaskNotifications.assign(&st.TaskNotifications)
	p.ReportNotifications.assign(&st.ReportNotifications)
	p.SystemAlerts.assign(&st.SystemAlerts)
	p.TwoFactorAuth.assign(&st.TwoFactorAuth)
	p.SessionTimeoutMinutes.assign(&st.SessionTimeoutMinutes)
	p.PasswordExpiryDays.assign(&st.PasswordExpiryDays)
	p.AutoBackup.assign(&st.AutoBackup)
	p.BackupFrequency.assign(&st.BackupFrequency)
}

// SeedSettings stores the default settings unless a record exists. It reports whether it wrote.
func (s *Service) SeedSettings(ctx context.Context) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}

	defaults := domainquality.DefaultSystemSettings()
	defaults.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(defaults)
	if err != nil {
		return false, errs.Wrap(err, "encode default settings")
	}

	wrote, err := s.kv.SetIfAbsent(ctx, settingsKey, string(raw))
	if err != nil {
		return false, err
	}
	if wrote {
		logging.Info(ctx, "system settings initialised", slog.String("component", "usecase.quality"))
	}
	return wrote, nil
}

// GetSettings returns the singleton settings, creating the defaults on first access.
func (s *Service) GetSettings(ctx context.Context) (domainquality.SystemSettings, error) {
	if err := checkContext(ctx); err != nil {
		return domainquality.SystemSettings{}, err
	}

	raw, found, err := s.kv.Get(ctx, settingsKey)
	if err != nil {
		return domainquality.SystemSettings{}, err
	}
	if !found {
		if _, err := s.SeedSettings(ctx); err != nil {
			return domainquality.SystemSettings{}, err
		}
		raw, _, err = s.kv.Get(ctx, settingsKey)
		if err != nil {
			return domainquality.SystemSettings{}, err
		}
	}

	settings := domainquality.DefaultSystemSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return domainquality.SystemSettings{}, errs.Wrap(err, "decode settings")
	}
	return settings, nil
}

// UpdateSettings merges p into the stored settings, or into the defaults for a full update.
func (s *Service) UpdateSettings(ctx context.Context, p SettingsPayload, partial bool) (domainquality.SystemSettings, error) {
	if err := checkContext(ctx); err != nil {
		return domainquality.SystemSettings{}, err
	}

	var updated domainquality.SystemSettings
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		settings := domainquality.DefaultSystemSettings()
		if partial {
			current, err := s.GetSettings(txCtx)
			if err != nil {
				return err
			}
			settings = current
		}
		p.applyTo(&settings)
		if err := s.check(settings, ""); err != nil {
			return err
		}
		settings.UpdatedAt = time.Now().UTC()

		raw, err := json.Marshal(settings)
		if err != nil {
			return errs.Wrap(err, "encode settings")
		}
		if err := s.kv.Set(txCtx, settingsKey, string(raw), 0); err != nil {
			return err
		}
		updated = settings
		return nil
	})
	if err != nil {
		return domainquality.SystemSettings{}, err
	}
	return updated, nil
}
