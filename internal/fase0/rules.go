package fase0

import "valora/internal/models"

// DefaultRules is the seed rule set: no lead activates without a signed
// NDA, no lead enters negotiation without its signed mandate, and the
// auto-suggest rules map each operation type to its mandate.
func DefaultRules() []models.WorkflowRule {
	return []models.WorkflowRule{
		{
			RuleType:         models.RuleBlocking,
			TargetStatus:     "activa",
			RequiredDocument: models.DocumentNDA,
			Reason:           "El NDA debe estar firmado antes de activar el lead",
			Active:           true,
		},
		{
			RuleType:         models.RuleBlocking,
			TargetStatus:     "negociacion",
			RequiredDocument: models.DocumentMandatoVenta,
			OperationType:    models.OperationVenta,
			Reason:           "El mandato de venta debe estar firmado antes de pasar a negociación",
			Active:           true,
		},
		{
			RuleType:         models.RuleBlocking,
			TargetStatus:     "negociacion",
			RequiredDocument: models.DocumentMandatoCompra,
			OperationType:    models.OperationCompra,
			Reason:           "El mandato de compra debe estar firmado antes de pasar a negociación",
			Active:           true,
		},
		{
			RuleType:          models.RuleAutoSuggest,
			OperationType:     models.OperationVenta,
			SuggestedDocument: models.DocumentMandatoVenta,
			Active:            true,
		},
		{
			RuleType:          models.RuleAutoSuggest,
			OperationType:     models.OperationCompra,
			SuggestedDocument: models.DocumentMandatoCompra,
			Active:            true,
		},
	}
}
