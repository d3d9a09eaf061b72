package quality

import "time"

type Category struct {
	ID          uint64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CheckItem is a single inspectable attribute definition.
type CheckItem struct {
	ID             uint64
	Name           string
	Type           CheckItemType
	CategoryID     *uint64
	Required       bool
	Unit           string
	Description    string
	Options        []string
	MinValue       *float64
	MaxValue       *float64
	DefaultValue   *float64
	DecimalPlaces  *int
	ReferenceImage string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Checklist is a reusable inspection template. Version increases on every update.
type Checklist struct {
	ID          uint64
	Name        string
	Description string
	CategoryID  *uint64
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ChecklistItem struct {
	ID          uint64
	ChecklistID uint64
	CheckItemID uint64
	Order       int
	Required    bool
	Instruction string
	Unit        string
	Options     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChecklistItemDetail is a checklist item joined with its check item.
type ChecklistItemDetail struct {
	ChecklistItem
	CheckItem CheckItem
}

// ChecklistItemRef is the minimal view of a checklist item needed for progress output.
type ChecklistItemRef struct {
	ID            uint64
	ChecklistID   uint64
	CheckItemName string
}

type ProcessSheet struct {
	ID           uint64
	Name         string
	ProjectName  string
	LotNumber    string
	Inspector    string
	Status       ProcessStatus
	Priority     int
	Assignee     string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	ChecklistID  *uint64
	Notes        string
	// Progress is client-maintained; the aggregator never writes it.
	Progress  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Execution struct {
	ID             uint64
	ProcessSheetID *uint64
	ChecklistID    uint64
	ExecutorID     *uint64
	Status         ExecutionStatus
	Result         ExecutionResult
	StartedAt      *time.Time
	FinishedAt     *time.Time
	Comment        string
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ExecutionItemResult struct {
	ID              uint64
	ExecutionID     uint64
	ChecklistItemID uint64
	Status          ItemStatus
	Value           string
	Note            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ExecutionPhoto struct {
	ID           uint64
	ItemResultID uint64
	Image        string
	Annotation   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is an account that can act as an execution's executor.
type User struct {
	ID          uint64
	Username    string
	Email       string
	DisplayName string
	Department  string
	IsActive    bool
	IsStaff     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Name is the display name, or the username when none is set.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

type Task struct {
	ID            uint64
	Title         string
	Description   string
	Assignee      string
	DueDate       *time.Time
	Status        TaskStatus
	Priority      TaskPriority
	ChecklistName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SystemSettings struct {
	SystemName            string    `json:"system_name"`
	Language              string    `json:"language"`
	Timezone              string    `json:"timezone"`
	DateFormat            string    `json:"date_format"`
	EmailNotifications    bool      `json:"email_notifications"`
	TaskNotifications     bool      `json:"task_notifications"`
	ReportNotifications   bool      `json:"report_notifications"`
	SystemAlerts          bool      `json:"system_alerts"`
	TwoFactorAuth         bool      `json:"two_factor_auth"`
	SessionTimeoutMinutes int       `json:"session_timeout_minutes"`
	PasswordExpiryDays    int       `json:"password_expiry_days"`
	AutoBackup            bool      `json:"auto_backup"`
	BackupFrequency       string    `json:"backup_frequency"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultSystemSettings is the record written on first initialisation.
func DefaultSystemSettings() SystemSettings {
	return SystemSettings{
		SystemName:            "Process & Quality Management",
		Language:              "ja",
		Timezone:              "Asia/Tokyo",
		DateFormat:            "YYYY/MM/DD",
		EmailNotifications:    true,
		TaskNotifications:     true,
		ReportNotifications:   false,
		SystemAlerts:          true,
		TwoFactorAuth:         false,
		SessionTimeoutMinutes: 60,
		PasswordExpiryDays:    90,
		AutoBackup:            true,
		BackupFrequency:       "daily",
	}
}
