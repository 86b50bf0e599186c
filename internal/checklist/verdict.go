package checklist

import "github.com/munidigital/transporte/internal/model"

// conditionalWarningLimit is the regulatory warning tolerance: strictly
// more than this many warnings (without any failure) downgrades the
// verdict to conditional.
const conditionalWarningLimit = 2

// DeriveVerdict maps a fully rated item set to the overall inspection
// result. Precedence: any failed item rejects outright; more than two
// warnings without a failure gives a conditional approval; anything else
// approves. Callers must ensure completeness first (ComputeProgress),
// unrated items are not counted here.
func DeriveVerdict(items []model.InspectionItem) string {
	p := ComputeProgress(items)
	switch {
	case p.Failed > 0:
		return model.VerdictRejected
	case p.Warnings > conditionalWarningLimit:
		return model.VerdictConditional
	default:
		return model.VerdictApproved
	}
}
