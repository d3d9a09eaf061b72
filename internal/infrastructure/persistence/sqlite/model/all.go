package model

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&CheckItem{},
		&Checklist{},
		&ChecklistItem{},
		&ProcessSheet{},
		&Execution{},
		&ExecutionItemResult{},
		&ExecutionPhoto{},
		&Task{},
		&AppKV{},
	}
}
