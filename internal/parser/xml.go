package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/utils"
)

// ParseCreditReportXML reads a bureau XML export. Tradeline, Inquiry and
// PublicRecord elements are collected wherever they appear in the document.
func ParseCreditReportXML(data []byte) (models.ParsedCreditReport, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return models.ParsedCreditReport{}, fmt.Errorf("failed to parse XML: %w", err)
	}
	if doc.Root() == nil {
		return models.ParsedCreditReport{}, fmt.Errorf("XML document has no root element")
	}

	report := models.ParsedCreditReport{
		Accounts:      []models.AccountData{},
		Inquiries:     []models.InquiryData{},
		PublicRecords: []models.PublicRecordData{},
	}

	for _, el := range doc.FindElements("//Tradeline") {
		report.Accounts = append(report.Accounts, tradelineFromXML(el))
	}

	for _, el := range doc.FindElements("//Inquiry") {
		d, ok := xmlDate(childText(el, "Date"))
		if !ok {
			continue
		}
		report.Inquiries = append(report.Inquiries, models.InquiryData{
			Date:     d,
			Creditor: childText(el, "Creditor"),
		})
	}

	for _, el := range doc.FindElements("//PublicRecord") {
		d, ok := xmlDate(childText(el, "Date"))
		if !ok {
			continue
		}
		record := models.PublicRecordData{
			Type:   publicRecordType(el.SelectAttrValue("type", childText(el, "Type"))),
			Date:   d,
			Status: publicRecordStatus(el.SelectAttrValue("status", childText(el, "Status"))),
		}
		if amount, ok := xmlAmount(childText(el, "Amount")); ok {
			record.Amount = &amount
		}
		report.PublicRecords = append(report.PublicRecords, record)
	}

	return report, nil
}

func tradelineFromXML(el *etree.Element) models.AccountData {
	typeText := childText(el, "AccountType")
	acct := models.AccountData{
		Name:        childText(el, "Creditor"),
		AccountType: xmlAccountType(typeText),
		Status:      models.AccountStatusCurrent,
	}
	if acct.Name == "" {
		acct.Name = typeText
	}
	if v, ok := xmlAmount(childText(el, "Balance")); ok {
		acct.CurrentBalance = v
	}
	if v, ok := xmlAmount(childText(el, "CreditLimit")); ok {
		acct.CreditLimit = &v
	}
	if v, ok := xmlAmount(childText(el, "OriginalAmount")); ok {
		acct.OriginalAmount = &v
	}
	if d, ok := xmlDate(childText(el, "OpenDate")); ok {
		acct.OpenDate = d
	}
	if d, ok := xmlDate(childText(el, "CloseDate")); ok {
		acct.CloseDate = &d
	}
	if s := childText(el, "Status"); s != "" {
		acct.Status = classifyStatus(strings.ToLower(s))
	}
	acct.LatePayments30 = childInt(el, "Late30")
	acct.LatePayments60 = childInt(el, "Late60")
	acct.LatePayments90 = childInt(el, "Late90")
	acct.MonthsReviewed = childInt(el, "MonthsReviewed")

	for _, p := range el.FindElements("./PaymentHistory/Payment") {
		d, ok := xmlDate(p.SelectAttrValue("date", ""))
		if !ok {
			continue
		}
		acct.PaymentHistory = append(acct.PaymentHistory, models.PaymentRecord{
			Date:   d,
			Status: models.PaymentStatus(strings.ToLower(p.SelectAttrValue("status", string(models.PaymentOnTime)))),
		})
	}
	return acct
}

// xmlAccountType accepts either the enum value or a descriptive label
func xmlAccountType(text string) models.AccountType {
	switch t := models.AccountType(strings.ToLower(strings.TrimSpace(text))); t {
	case models.AccountTypeCreditCard, models.AccountTypeAutoLoan, models.AccountTypePersonalLoan,
		models.AccountTypeStudentLoan, models.AccountTypeMortgage, models.AccountTypeOther:
		return t
	}
	return InferAccountType(text)
}

func publicRecordType(text string) models.PublicRecordType {
	lower := strings.ToLower(text)
	for _, kw := range publicRecordKeywords {
		if strings.Contains(lower, kw.keyword) || lower == string(kw.recordType) {
			return kw.recordType
		}
	}
	return models.PublicRecordJudgment
}

func publicRecordStatus(text string) models.PublicRecordStatus {
	switch lower := strings.ToLower(text); {
	case strings.Contains(lower, "discharged"):
		return models.PublicRecordDischarged
	case strings.Contains(lower, "satisfied"), strings.Contains(lower, "released"):
		return models.PublicRecordSatisfied
	default:
		return models.PublicRecordFiled
	}
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

func childInt(el *etree.Element, tag string) int {
	n, err := strconv.Atoi(childText(el, tag))
	if err != nil {
		return 0
	}
	return n
}

func xmlAmount(text string) (float64, bool) {
	cleaned, ok := utils.CleanCurrency(text)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func xmlDate(text string) (time.Time, bool) {
	normalized, ok := utils.NormalizeDate(text)
	if !ok {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", normalized)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
