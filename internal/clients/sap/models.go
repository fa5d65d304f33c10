package sap

// CostMapping links a P6 WBS code to its SAP PS element (posid) with the
// match confidence assigned during onboarding, plus the actual cost booked
// against that element in SAP. SAP actuals override the P6 actual-cost
// column when present, since SAP is the system of record for cost.
type CostMapping struct {
	WBSCode    string   `json:"wbsCode"`
	Posid      string   `json:"posid"`
	Confidence float64  `json:"confidenceScore"`
	ActualCost *float64 `json:"actualCost"`
}
