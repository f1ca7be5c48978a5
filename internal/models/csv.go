package models

// CSVAccountData is one row of an imported accounts spreadsheet.
// Nil fields were either not mapped from the header or not parseable.
type CSVAccountData struct {
	AccountName    string  `json:"account_name"`
	AccountNumber  *string `json:"account_number,omitempty"`
	AccountType    *string `json:"account_type,omitempty"`
	Balance        *string `json:"balance,omitempty"`
	CreditLimit    *string `json:"credit_limit,omitempty"`
	InterestRate   *string `json:"interest_rate,omitempty"`
	MinimumPayment *string `json:"minimum_payment,omitempty"`
	DueDate        *string `json:"due_date,omitempty"`
	StatementDate  *string `json:"statement_date,omitempty"`
	Status         *string `json:"status,omitempty"`
}
