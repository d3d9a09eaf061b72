package quality

import "strings"

type CheckItemType string

const (
	CheckItemNumber  CheckItemType = "number"
	CheckItemText    CheckItemType = "text"
	CheckItemSelect  CheckItemType = "select"
	CheckItemBoolean CheckItemType = "boolean"
	CheckItemPhoto   CheckItemType = "photo"
)

type ProcessStatus string

const (
	ProcessPlanning  ProcessStatus = "planning"
	ProcessPreparing ProcessStatus = "preparing"
	ProcessRunning   ProcessStatus = "running"
	ProcessDone      ProcessStatus = "done"
)

type ExecutionStatus string

const (
	ExecutionDraft     ExecutionStatus = "draft"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionApproved  ExecutionStatus = "approved"
	ExecutionRejected  ExecutionStatus = "rejected"
)

type ExecutionResult string

const (
	ResultNone ExecutionResult = ""
	ResultPass ExecutionResult = "pass"
	ResultFail ExecutionResult = "fail"
	ResultWarn ExecutionResult = "warn"
)

type ItemStatus string

const (
	ItemOK   ItemStatus = "OK"
	ItemNG   ItemStatus = "NG"
	ItemSkip ItemStatus = "SKIP"
)

type TaskStatus string

const (
	TaskTodo  TaskStatus = "todo"
	TaskDoing TaskStatus = "doing"
	TaskDone  TaskStatus = "done"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

var backupFrequencies = []string{"hourly", "daily", "weekly", "monthly"}

func ParseCheckItemType(raw string) (CheckItemType, error) {
	switch v := CheckItemType(strings.TrimSpace(raw)); v {
	case "":
		return CheckItemText, nil
	case CheckItemNumber, CheckItemText, CheckItemSelect, CheckItemBoolean, CheckItemPhoto:
		return v, nil
	default:
		return "", invalidChoice(raw)
	}
}

func ParseProcessStatus(raw string) (ProcessStatus, error) {
	switch v := ProcessStatus(strings.TrimSpace(raw)); v {
	case "":
		return ProcessPlanning, nil
	case ProcessPlanning, ProcessPreparing, ProcessRunning, ProcessDone:
		return v, nil
	default:
		return "", invalidChoice(raw)
	}
}

func ParseExecutionStatus(raw string) (ExecutionStatus, error) {
	switch v := ExecutionStatus(strings.TrimSpace(raw)); v {
	case "":
		return ExecutionDraft, nil
	case ExecutionDraft, ExecutionRunning, ExecutionCompleted, ExecutionApproved, ExecutionRejected:
		return v, nil
	default:
		return "", invalidChoice(raw)
	}
}

// ParseExecutionResult accepts the empty string as "no verdict yet".
func ParseExecutionResult(raw string) (ExecutionResult, error) {
	switch v := ExecutionResult(strings.TrimSpace(raw)); v {
	case ResultNone, ResultPass, ResultFail, ResultWarn:
		return v, nil
	default:
		return "", invalidChoice(raw)
	}
}

func ParseItemStatus(raw string) (ItemStatus, error) {
	switch v := ItemStatus(strings.TrimSpace(raw)); v {
	case "":
		return ItemOK, nil
	case ItemOK, ItemNG, ItemSkip:
		return v, nil
	default:
		return "", invalidChoice(raw)
	}
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	switch v := TaskStatus(strings.TrimSpace(raw)); v {
	case "":
		return TaskTodo, nil
	case TaskTodo, TaskDoing, TaskDone:
		return v, nil
	default:
		return "", invalidChoice(raw)
	}
}

func ParseTaskPriority(raw string) (TaskPriority, error) {
	switch v := TaskPriority(strings.TrimSpace(raw)); v {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return v, nil
	default:
		return "", invalidChoice(raw)
	}
}

func ValidBackupFrequency(raw string) bool {
	for _, f := range backupFrequencies {
		if f == raw {
			return true
		}
	}
	return false
}

var processStatusLabels = map[ProcessStatus]string{
	ProcessPlanning:  "計画中",
	ProcessPreparing: "実行準備中",
	ProcessRunning:   "実行中",
	ProcessDone:      "完了",
}

// Label is the display name shown next to the status code.
func (s ProcessStatus) Label() string {
	if label, ok := processStatusLabels[s]; ok {
		return label
	}
	return string(s)
}
