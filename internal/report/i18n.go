package report

// Translations for the rendered document. The report is self-contained,
// so every user-facing string lives here; unknown languages fall back
// to English.

var translations = map[string]map[string]string{
	"en": {
		"report_title":  "Monthly Report",
		"income":        "Income",
		"expenses":      "Expenses",
		"saved":         "Saved",
		"remaining":     "Remaining",
		"categories":    "Spending by category",
		"daily_trend":   "Daily spending",
		"history":       "Transactions",
		"uncategorized": "Uncategorized",
		"no_expenses":   "No expenses this month",
		"type_expense":  "Expense",
		"type_income":   "Income",
		"type_saved":    "Saved",
		"type_credit":   "Credit",
	},
	"uk": {
		"report_title":  "Місячний звіт",
		"income":        "Доходи",
		"expenses":      "Витрати",
		"saved":         "Заощаджено",
		"remaining":     "Залишок",
		"categories":    "Витрати за категоріями",
		"daily_trend":   "Витрати по днях",
		"history":       "Транзакції",
		"uncategorized": "Без категорії",
		"no_expenses":   "Цього місяця витрат немає",
		"type_expense":  "Витрата",
		"type_income":   "Дохід",
		"type_saved":    "Заощадження",
		"type_credit":   "Кредит",
	},
}

// tr resolves a translation key for a language, falling back to English
// and then to the key itself so the renderer never fails on a label.
func tr(lang, key string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := translations["en"][key]; ok {
		return s
	}
	return key
}
