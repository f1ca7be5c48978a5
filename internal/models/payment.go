package models

import "time"

// DateWindow is an inclusive range of calendar days
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// UtilizationImpact shows utilization before and after a payment, in percent
type UtilizationImpact struct {
	Current      float64 `json:"current"`
	AfterPayment float64 `json:"after_payment"`
	Improvement  float64 `json:"improvement"`
}

// PaymentRecommendation is the suggested pre-statement payment for a card
type PaymentRecommendation struct {
	AccountName          string            `json:"account_name"`
	StatementDate        time.Time         `json:"statement_date"`
	DueDate              time.Time         `json:"due_date"`
	OptimalPaymentDate   time.Time         `json:"optimal_payment_date"`
	OptimalPaymentWindow DateWindow        `json:"optimal_payment_window"`
	Reasoning            string            `json:"reasoning"`
	UtilizationImpact    UtilizationImpact `json:"utilization_impact"`
}

// LiveAccount is a revolving account tracked for payment timing
type LiveAccount struct {
	ID             int64     `json:"id,omitempty"`
	UserID         int64     `json:"user_id,omitempty"`
	OwnerEmail     string    `json:"-"`
	OwnerName      string    `json:"-"`
	Name           string    `json:"name"`
	StatementDate  time.Time `json:"statement_date"`
	DueDate        time.Time `json:"due_date"`
	CurrentBalance float64   `json:"current_balance"`
	CreditLimit    float64   `json:"credit_limit"`
	PlannedPayment float64   `json:"planned_payment,omitempty"`
}
