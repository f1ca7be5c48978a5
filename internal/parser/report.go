// Package parser turns raw credit report text, CSV exports and bureau XML into
// structured tradelines, inquiries and public records.
package parser

import (
	"regexp"
	"strings"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/utils"
)

// Section is the parser state while walking report lines
type Section int

const (
	SectionNone Section = iota
	SectionAccounts
	SectionInquiries
	SectionPublicRecords
)

func (s Section) String() string {
	switch s {
	case SectionAccounts:
		return "accounts"
	case SectionInquiries:
		return "inquiries"
	case SectionPublicRecords:
		return "public_records"
	default:
		return "none"
	}
}

// accountTypeRules is checked in order; the first match wins.
var accountTypeRules = []struct {
	accountType models.AccountType
	keywords    []string
}{
	{models.AccountTypeCreditCard, []string{"credit card", "revolving"}},
	{models.AccountTypeAutoLoan, []string{"auto", "vehicle"}},
	{models.AccountTypeMortgage, []string{"mortgage", "home loan"}},
	{models.AccountTypeStudentLoan, []string{"student"}},
	{models.AccountTypePersonalLoan, []string{"personal", "installment"}},
}

var (
	accountLinePattern = regexp.MustCompile(`(?i)credit card|revolving|installment|loan|mortgage`)
	latePattern        = regexp.MustCompile(`(?i)\b(30|60|90)\s*days?\s*late\b`)
	timesPattern       = regexp.MustCompile(`(?i)(\d+)\s*times?\b`)
)

// InferAccountType maps free text to an account type by ordered keyword match
func InferAccountType(text string) models.AccountType {
	lower := strings.ToLower(text)
	for _, rule := range accountTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.accountType
			}
		}
	}
	return models.AccountTypeOther
}

// ReportParser is the line-walking state machine behind ParseCreditReportText.
type ReportParser struct {
	section Section
	current *models.AccountData
	report  models.ParsedCreditReport
}

// NewReportParser returns a parser in SectionNone with empty output
func NewReportParser() *ReportParser {
	return &ReportParser{
		report: models.ParsedCreditReport{
			Accounts:      []models.AccountData{},
			Inquiries:     []models.InquiryData{},
			PublicRecords: []models.PublicRecordData{},
		},
	}
}

// ParseCreditReportText extracts accounts, inquiries and public records from
// unstructured report text. Unrecognised lines are ignored.
func ParseCreditReportText(text string) models.ParsedCreditReport {
	p := NewReportParser()
	for _, line := range strings.Split(text, "\n") {
		p.Feed(line)
	}
	return p.Finish()
}

// Section reports the current state
func (p *ReportParser) Section() Section {
	return p.section
}

// Pending returns the tradeline being accumulated, if any
func (p *ReportParser) Pending() *models.AccountData {
	return p.current
}

// Feed consumes one line of report text
func (p *ReportParser) Feed(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	lower := strings.ToLower(line)

	if accountLinePattern.MatchString(line) {
		p.flush()
		p.section = SectionAccounts
		p.current = &models.AccountData{
			Name:        line,
			AccountType: InferAccountType(line),
			Status:      models.AccountStatusCurrent,
		}
		return
	}

	if next, consumed, ok := sectionTransition(lower); ok {
		p.flush()
		p.section = next
		if consumed {
			return
		}
	}

	switch p.section {
	case SectionAccounts:
		p.applyAccountField(line, lower)
	case SectionInquiries:
		p.addInquiry(line)
	case SectionPublicRecords:
		p.addPublicRecord(line, lower)
	}
}

// Finish flushes the pending tradeline and returns the report
func (p *ReportParser) Finish() models.ParsedCreditReport {
	p.flush()
	return p.report
}

// flush is the single transition that moves the pending tradeline into the output
func (p *ReportParser) flush() {
	if p.current == nil {
		return
	}
	p.report.Accounts = append(p.report.Accounts, *p.current)
	p.current = nil
}

// sectionTransition detects section headers. Header lines such as "Inquiries"
// or "Public Records" are consumed; "bankruptcy"/"judgment" lines switch the
// section and are then parsed as records themselves.
func sectionTransition(lower string) (Section, bool, bool) {
	switch {
	case strings.Contains(lower, "inquir"):
		return SectionInquiries, true, true
	case strings.Contains(lower, "public record"):
		return SectionPublicRecords, true, true
	case strings.Contains(lower, "bankruptcy"), strings.Contains(lower, "judgment"):
		return SectionPublicRecords, false, true
	}
	return SectionNone, false, false
}

func (p *ReportParser) applyAccountField(line, lower string) {
	if p.current == nil {
		return
	}
	acct := p.current

	if idx := strings.Index(lower, "original amount"); idx >= 0 {
		if amount, ok := utils.ExtractAmount(lower[idx:]); ok {
			original := float64(amount)
			acct.OriginalAmount = &original
		}
	} else if idx := strings.Index(lower, "balance"); idx >= 0 {
		if amount, ok := amountNear(lower, idx); ok {
			acct.CurrentBalance = float64(amount)
		}
	}
	if idx := keywordIndex(lower, "limit", "high credit"); idx >= 0 {
		if amount, ok := utils.ExtractAmount(lower[idx:]); ok {
			limit := float64(amount)
			acct.CreditLimit = &limit
		}
	}
	if strings.Contains(lower, "opened") || strings.Contains(lower, "open date") {
		if d, ok := utils.ExtractDate(line); ok {
			acct.OpenDate = d
		}
	}
	if strings.Contains(lower, "date closed") || strings.Contains(lower, "closed on") {
		if d, ok := utils.ExtractDate(line); ok {
			acct.CloseDate = &d
		}
	}
	if strings.Contains(lower, "status") {
		acct.Status = classifyStatus(lower)
	}
	if strings.Contains(lower, "months reviewed") {
		if n, ok := utils.FirstInteger(line); ok {
			acct.MonthsReviewed = n
		}
	}
	if m := latePattern.FindStringSubmatchIndex(line); m != nil {
		if count, ok := lateCount(line, m[1]); ok {
			switch line[m[2]:m[3]] {
			case "30":
				acct.LatePayments30 = count
			case "60":
				acct.LatePayments60 = count
			case "90":
				acct.LatePayments90 = count
			}
		}
	}
}

// amountNear reads the amount after the keyword at idx, falling back to any
// amount on the line for layouts like "$500 balance".
func amountNear(lower string, idx int) (int, bool) {
	if amount, ok := utils.ExtractAmount(lower[idx:]); ok {
		return amount, true
	}
	return utils.ExtractAmount(lower)
}

// lateCount prefers an explicit "N times", otherwise the first integer after
// the "NN days late" phrase.
func lateCount(line string, after int) (int, bool) {
	if m := timesPattern.FindStringSubmatch(line); m != nil {
		return utils.FirstInteger(m[1])
	}
	return utils.FirstInteger(line[after:])
}

func classifyStatus(lower string) models.AccountStatus {
	lower = strings.ReplaceAll(lower, "never late", "")
	agreed := strings.Contains(lower, "as agreed")
	switch {
	case !agreed && (strings.Contains(lower, "late") || strings.Contains(lower, "delinquent") || strings.Contains(lower, "past due")):
		return models.AccountStatusLate
	case strings.Contains(lower, "paid"):
		return models.AccountStatusPaidOff
	case strings.Contains(lower, "closed"):
		return models.AccountStatusClosed
	default:
		return models.AccountStatusCurrent
	}
}

func (p *ReportParser) addInquiry(line string) {
	d, ok := utils.ExtractDate(line)
	if !ok {
		return
	}
	p.report.Inquiries = append(p.report.Inquiries, models.InquiryData{
		Date:     d,
		Creditor: creditorPrefix(line),
	})
}

var publicRecordKeywords = []struct {
	keyword    string
	recordType models.PublicRecordType
}{
	{"bankruptcy", models.PublicRecordBankruptcy},
	{"tax lien", models.PublicRecordTaxLien},
	{"judgment", models.PublicRecordJudgment},
	{"foreclosure", models.PublicRecordForeclosure},
}

func (p *ReportParser) addPublicRecord(line, lower string) {
	for _, kw := range publicRecordKeywords {
		if !strings.Contains(lower, kw.keyword) {
			continue
		}
		d, ok := utils.ExtractDate(line)
		if !ok {
			return
		}
		record := models.PublicRecordData{
			Type:   kw.recordType,
			Date:   d,
			Status: models.PublicRecordFiled,
		}
		if kw.recordType != models.PublicRecordBankruptcy {
			if idx := strings.Index(lower, "$"); idx >= 0 {
				if amount, ok := utils.ExtractAmount(lower[idx:]); ok {
					a := float64(amount)
					record.Amount = &a
				}
			}
		}
		p.report.PublicRecords = append(p.report.PublicRecords, record)
		return
	}
}

// creditorPrefix is the text before the first digit, minus trailing punctuation
func creditorPrefix(line string) string {
	idx := strings.IndexAny(line, "0123456789")
	if idx < 0 {
		return strings.TrimSpace(line)
	}
	return strings.TrimRight(strings.TrimSpace(line[:idx]), " :-,")
}

func keywordIndex(lower string, keywords ...string) int {
	for _, kw := range keywords {
		if idx := strings.Index(lower, kw); idx >= 0 {
			return idx
		}
	}
	return -1
}
