package models

// Bureau is one of the three credit reporting agencies
type Bureau string

const (
	BureauEquifax    Bureau = "equifax"
	BureauExperian   Bureau = "experian"
	BureauTransUnion Bureau = "transunion"
)

// Bureaus lists every bureau in output order
var Bureaus = []Bureau{BureauEquifax, BureauExperian, BureauTransUnion}

// Confidence rates how trustworthy a score estimate is
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// BureauScore is an actual or simulated score from one bureau
type BureauScore struct {
	Bureau      Bureau     `json:"bureau"`
	Score       int        `json:"score"`
	IsSimulated bool       `json:"is_simulated"`
	Confidence  Confidence `json:"confidence"`
	Notes       string     `json:"notes"`
}
