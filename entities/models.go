package entities

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&MealRecord{},
		&AnalysisResult{},
		&AdviceRecord{},
		&DailyBeautyStat{},
	}
}
