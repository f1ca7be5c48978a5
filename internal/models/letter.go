package models

import "time"

// LetterType selects a dispute letter template
type LetterType string

const (
	LetterNotMine               LetterType = "not_mine"
	LetterInaccurateLatePayment LetterType = "inaccurate_late_payment"
	LetterIncorrectBalance      LetterType = "incorrect_balance"
	LetterObsoleteItem          LetterType = "obsolete_item"
	LetterIdentityTheft         LetterType = "identity_theft"
	LetterDebtValidation        LetterType = "debt_validation"
)

// LetterInput carries the consumer and item details for a dispute letter
type LetterInput struct {
	ConsumerName    string    `json:"consumer_name"`
	ConsumerAddress string    `json:"consumer_address"`
	Bureau          Bureau    `json:"bureau"`
	CreditorName    string    `json:"creditor_name"`
	AccountNumber   string    `json:"account_number"`
	ReportedValue   string    `json:"reported_value,omitempty"`
	CorrectValue    string    `json:"correct_value,omitempty"`
	ItemDate        time.Time `json:"item_date,omitempty"`
	Date            time.Time `json:"date,omitempty"`
}

// DisputeLetter is a generated letter ready to send
type DisputeLetter struct {
	Reference string     `json:"reference"`
	Type      LetterType `json:"type"`
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
}
