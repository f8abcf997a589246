package engine

import "fintrack/internal/core"

const unknownCategoryName = "Unknown Category"

// mergeCategory folds the source category into the target and deletes the
// source. The target category record is never touched.
func (r Reducer) mergeCategory(s core.State, a MergeCategory) core.State {
	if a.SourceCategoryID == a.TargetCategoryID || !a.Mode.Valid() {
		return s
	}

	source, found := s.Category(a.SourceCategoryID)
	kept := make([]core.Expense, 0, len(s.Expenses))
	var moved []core.Expense
	for _, e := range s.Expenses {
		if e.CategoryID == a.SourceCategoryID {
			moved = append(moved, e)
			continue
		}
		kept = append(kept, e)
	}
	if !found && len(moved) == 0 {
		return s
	}

	next := s
	next.Categories = removeWhere(s.Categories, func(c core.Category) bool { return c.ID == a.SourceCategoryID })

	switch a.Mode {
	case MergeIndividual:
		for i := range moved {
			moved[i].CategoryID = a.TargetCategoryID
		}
		next.Expenses = append(kept, moved...)

	case MergeTotal:
		next.Expenses = kept
		if total := core.AddAmounts(core.Amounts(moved)...); total > 0 {
			name := source.Name
			if name == "" {
				name = unknownCategoryName
			}
			next.Expenses = append(next.Expenses, core.Expense{
				ID:          r.newID(),
				Amount:      total,
				Date:        core.FormatTimestamp(r.now()),
				Description: "Merged from " + name,
				CategoryID:  a.TargetCategoryID,
			})
		}
	}
	return next
}
