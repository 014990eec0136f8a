package recurring

import (
	"fmt"

	"scadenze/internal/core"
)

func expense(desc string, date core.Date, cents int64) core.Transaction {
	return core.Transaction{
		ID:          fmt.Sprintf("%s-%s", desc, date),
		Kind:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Description: desc,
		OccurredOn:  date,
	}
}

// netflix returns the four monthly charges used across the tests,
// 2023-10-14 through 2024-01-14.
func netflix(cents int64) []core.Transaction {
	return []core.Transaction{
		expense("Netflix Oct", core.NewDate(2023, 10, 14), cents),
		expense("Netflix Nov", core.NewDate(2023, 11, 14), cents),
		expense("Netflix Dec", core.NewDate(2023, 12, 14), cents),
		expense("Netflix Jan", core.NewDate(2024, 1, 14), cents),
	}
}
