package services

import "ticketera/internal/models"

// Allowed status transitions.
var OrderTransitions = map[string]map[string]bool{
	models.ValidationPending:  {models.ValidationApproved: true, models.ValidationRejected: true},
	models.ValidationApproved: {},
	models.ValidationRejected: {},
}

// PhaseTransitions: compose -> form happens only through Checkout.Reset after a stored order.
var PhaseTransitions = map[models.Phase]map[models.Phase]bool{
	models.PhaseForm:         {models.PhaseVerification: true},
	models.PhaseVerification: {models.PhaseForm: true, models.PhaseCompose: true},
	models.PhaseCompose:      {models.PhaseForm: true},
}

func canTransition[S comparable](current, to S, table map[S]map[S]bool) bool {
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[to]
}
