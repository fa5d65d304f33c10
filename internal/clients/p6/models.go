package p6

// ProjectInfo is a project header from the P6 export API.
type ProjectInfo struct {
	ObjectID string `json:"objectId"`
	Code     string `json:"id"`
	Name     string `json:"name"`
	Client   string `json:"client"`
	Status   string `json:"status"` // Active, Inactive, What-If
}

// WBSElement is one row of a project's WBS export with its cost/schedule
// values cumulated to the export date.
type WBSElement struct {
	ObjectID           string  `json:"objectId"`
	ParentObjectID     *string `json:"parentObjectId"`
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	PlannedValue       float64 `json:"plannedValueCost"`
	EarnedValue        float64 `json:"earnedValueCost"`
	ActualCost         float64 `json:"actualCost"`
	BudgetAtCompletion float64 `json:"budgetAtCompletionCost"`
}
