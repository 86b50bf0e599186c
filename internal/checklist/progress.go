package checklist

import "github.com/munidigital/transporte/internal/model"

// Progress is the aggregate rating state of an inspection's items.
// Passed + Warnings + Failed always equals Completed.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Passed    int `json:"passed"`
	Warnings  int `json:"warnings"`
	Failed    int `json:"failed"`
}

// Complete reports whether every item has been rated.
func (p Progress) Complete() bool {
	return p.Completed == p.Total
}

// ValidStatus reports whether s is one of the four item statuses.
func ValidStatus(s string) bool {
	switch s {
	case model.ItemStatusUnrated, model.ItemStatusPass, model.ItemStatusWarning, model.ItemStatusFail:
		return true
	}
	return false
}

// ComputeProgress aggregates item states. Unrated items count toward Total
// only; the three rated counts partition Completed.
func ComputeProgress(items []model.InspectionItem) Progress {
	p := Progress{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case model.ItemStatusPass:
			p.Passed++
		case model.ItemStatusWarning:
			p.Warnings++
		case model.ItemStatusFail:
			p.Failed++
		}
	}
	p.Completed = p.Passed + p.Warnings + p.Failed
	return p
}
