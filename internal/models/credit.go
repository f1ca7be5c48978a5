package models

import "time"

// AccountType is the kind of tradeline
type AccountType string

const (
	AccountTypeCreditCard   AccountType = "credit_card"
	AccountTypeAutoLoan     AccountType = "auto_loan"
	AccountTypePersonalLoan AccountType = "personal_loan"
	AccountTypeStudentLoan  AccountType = "student_loan"
	AccountTypeMortgage     AccountType = "mortgage"
	AccountTypeOther        AccountType = "other"
)

// AccountStatus is the reported state of a tradeline
type AccountStatus string

const (
	AccountStatusCurrent AccountStatus = "current"
	AccountStatusLate    AccountStatus = "late"
	AccountStatusClosed  AccountStatus = "closed"
	AccountStatusPaidOff AccountStatus = "paid_off"
)

// PaymentStatus is one month's payment outcome
type PaymentStatus string

const (
	PaymentOnTime    PaymentStatus = "on_time"
	PaymentLate30    PaymentStatus = "30_days_late"
	PaymentLate60    PaymentStatus = "60_days_late"
	PaymentLate90    PaymentStatus = "90_days_late"
	PaymentChargeOff PaymentStatus = "charge_off"
)

// PaymentRecord represents one month of payment history
type PaymentRecord struct {
	Date   time.Time     `json:"date"`
	Status PaymentStatus `json:"status"`
}

// AccountData represents a single tradeline.
// When PaymentHistory is empty the aggregate late counters and MonthsReviewed
// stand in for it; the two are never combined.
type AccountData struct {
	Name           string          `json:"name,omitempty"`
	AccountType    AccountType     `json:"account_type"`
	CurrentBalance float64         `json:"current_balance"`
	CreditLimit    *float64        `json:"credit_limit,omitempty"`
	OriginalAmount *float64        `json:"original_amount,omitempty"`
	Status         AccountStatus   `json:"status"`
	OpenDate       time.Time       `json:"open_date"`
	CloseDate      *time.Time      `json:"close_date,omitempty"`
	PaymentHistory []PaymentRecord `json:"payment_history,omitempty"`
	LatePayments30 int             `json:"late_payments_30,omitempty"`
	LatePayments60 int             `json:"late_payments_60,omitempty"`
	LatePayments90 int             `json:"late_payments_90,omitempty"`
	MonthsReviewed int             `json:"months_reviewed,omitempty"`
}

// Limit returns the credit limit or zero when none is reported
func (a AccountData) Limit() float64 {
	if a.CreditLimit == nil {
		return 0
	}
	return *a.CreditLimit
}

// InquiryData represents a hard inquiry
type InquiryData struct {
	Date     time.Time `json:"date"`
	Creditor string    `json:"creditor"`
}

// PublicRecordType is the kind of public record
type PublicRecordType string

const (
	PublicRecordBankruptcy  PublicRecordType = "bankruptcy"
	PublicRecordTaxLien     PublicRecordType = "tax_lien"
	PublicRecordJudgment    PublicRecordType = "judgment"
	PublicRecordForeclosure PublicRecordType = "foreclosure"
)

// PublicRecordStatus is the court status of a public record
type PublicRecordStatus string

const (
	PublicRecordFiled      PublicRecordStatus = "filed"
	PublicRecordDischarged PublicRecordStatus = "discharged"
	PublicRecordSatisfied  PublicRecordStatus = "satisfied"
)

// PublicRecordData represents a bankruptcy, lien, judgment or foreclosure
type PublicRecordData struct {
	Type   PublicRecordType   `json:"type"`
	Date   time.Time          `json:"date"`
	Amount *float64           `json:"amount,omitempty"`
	Status PublicRecordStatus `json:"status"`
}

// CreditProfile is the sole input to score calculation
type CreditProfile struct {
	Accounts      []AccountData      `json:"accounts"`
	Inquiries     []InquiryData      `json:"inquiries"`
	PublicRecords []PublicRecordData `json:"public_records"`
}

// ProfileChanges overlays a CreditProfile for what-if scenarios.
// A nil field falls back to the current profile's value.
type ProfileChanges struct {
	Accounts      *[]AccountData      `json:"accounts,omitempty"`
	Inquiries     *[]InquiryData      `json:"inquiries,omitempty"`
	PublicRecords *[]PublicRecordData `json:"public_records,omitempty"`
}

// ParsedCreditReport is the structured output of report parsing
type ParsedCreditReport struct {
	Accounts      []AccountData      `json:"accounts"`
	Inquiries     []InquiryData      `json:"inquiries"`
	PublicRecords []PublicRecordData `json:"public_records"`
}

// Profile converts the parsed report into a scoring input
func (r ParsedCreditReport) Profile() CreditProfile {
	return CreditProfile{
		Accounts:      r.Accounts,
		Inquiries:     r.Inquiries,
		PublicRecords: r.PublicRecords,
	}
}
