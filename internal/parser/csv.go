package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/utils"
)

// ErrInsufficientCSVRows is returned when the input has no data row after the header
var ErrInsufficientCSVRows = errors.New("CSV must contain a header row and at least one data row")

// csvField identifies a CSVAccountData field
type csvField int

const (
	fieldAccountName csvField = iota
	fieldAccountNumber
	fieldAccountType
	fieldBalance
	fieldCreditLimit
	fieldInterestRate
	fieldDueDate
	fieldMinimumPayment
	fieldStatementDate
	fieldStatus
)

type valueKind int

const (
	kindText valueKind = iota
	kindCurrency
	kindPercentage
	kindDate
)

// headerMappings is matched in order against each header cell; the first
// pattern that matches claims the column.
var headerMappings = []struct {
	field   csvField
	pattern *regexp.Regexp
	kind    valueKind
}{
	{fieldAccountName, regexp.MustCompile(`(?i)account\s*name|creditor|lender|company`), kindText},
	{fieldAccountNumber, regexp.MustCompile(`(?i)account\s*(number|num|no\.?|#)|acct`), kindText},
	{fieldAccountType, regexp.MustCompile(`(?i)account\s*type|^\s*type\s*$`), kindText},
	{fieldBalance, regexp.MustCompile(`(?i)balance|amount\s*owed`), kindCurrency},
	{fieldCreditLimit, regexp.MustCompile(`(?i)credit\s*limit|limit|high\s*credit`), kindCurrency},
	{fieldInterestRate, regexp.MustCompile(`(?i)interest|apr|rate`), kindPercentage},
	{fieldDueDate, regexp.MustCompile(`(?i)due\s*date|payment\s*date`), kindDate},
	{fieldMinimumPayment, regexp.MustCompile(`(?i)min(imum)?\s*(payment|due)|payment\s*due`), kindCurrency},
	{fieldStatementDate, regexp.MustCompile(`(?i)statement|closing`), kindDate},
	{fieldStatus, regexp.MustCompile(`(?i)status|condition`), kindText},
}

type columnMapping struct {
	field csvField
	kind  valueKind
}

// ParseAccountsCSV reads a spreadsheet export of accounts. Header names are
// matched case-insensitively in any order; quoted cells and "" escapes are honoured.
func ParseAccountsCSV(text string) ([]models.CSVAccountData, error) {
	nonEmpty := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return nil, ErrInsufficientCSVRows
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrInsufficientCSVRows
	}

	columns := mapHeader(records[0])
	accounts := make([]models.CSVAccountData, 0, len(records)-1)
	for _, row := range records[1:] {
		if isBlankRow(row) {
			continue
		}
		row = rejoinThousands(row, len(records[0]), columns)
		accounts = append(accounts, buildCSVAccount(row, columns))
	}
	return accounts, nil
}

var (
	currencyHead   = regexp.MustCompile(`^\s*-?\$?-?[\d,]*\d$`)
	thousandsGroup = regexp.MustCompile(`^\d{3}(\.\d+)?\s*$`)
)

// rejoinThousands folds unquoted amounts such as $1,200 back into one cell.
// Only rows wider than the header are touched, and only at currency columns.
func rejoinThousands(row []string, width int, columns map[int]columnMapping) []string {
	for i := 0; i < len(row)-1 && len(row) > width; {
		col, ok := columns[i]
		if !ok || col.kind != kindCurrency || !currencyHead.MatchString(row[i]) || !thousandsGroup.MatchString(row[i+1]) {
			i++
			continue
		}
		joined := make([]string, 0, len(row)-1)
		joined = append(joined, row[:i]...)
		joined = append(joined, row[i]+","+row[i+1])
		row = append(joined, row[i+2:]...)
	}
	return row
}

func mapHeader(header []string) map[int]columnMapping {
	columns := make(map[int]columnMapping)
	claimed := make(map[csvField]bool)
	for i, cell := range header {
		name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		for _, m := range headerMappings {
			if !m.pattern.MatchString(name) {
				continue
			}
			if !claimed[m.field] {
				claimed[m.field] = true
				columns[i] = columnMapping{field: m.field, kind: m.kind}
			}
			break
		}
	}
	return columns
}

func buildCSVAccount(row []string, columns map[int]columnMapping) models.CSVAccountData {
	account := models.CSVAccountData{AccountName: "Unknown Account"}
	for i, cell := range row {
		col, ok := columns[i]
		if !ok {
			continue
		}
		value, ok := convertCell(cell, col.kind)
		if !ok {
			continue
		}
		switch col.field {
		case fieldAccountName:
			account.AccountName = *value
		case fieldAccountNumber:
			account.AccountNumber = value
		case fieldAccountType:
			account.AccountType = value
		case fieldBalance:
			account.Balance = value
		case fieldCreditLimit:
			account.CreditLimit = value
		case fieldInterestRate:
			account.InterestRate = value
		case fieldDueDate:
			account.DueDate = value
		case fieldMinimumPayment:
			account.MinimumPayment = value
		case fieldStatementDate:
			account.StatementDate = value
		case fieldStatus:
			account.Status = value
		}
	}
	return account
}

// convertCell returns nil-equivalent (false) for blank or unparseable cells
func convertCell(cell string, kind valueKind) (*string, bool) {
	raw := strings.TrimSpace(cell)
	if raw == "" {
		return nil, false
	}
	var (
		out string
		ok  bool
	)
	switch kind {
	case kindCurrency:
		out, ok = utils.CleanCurrency(raw)
	case kindPercentage:
		out, ok = utils.CleanPercentage(raw)
	case kindDate:
		out, ok = utils.NormalizeDate(raw)
	default:
		out, ok = raw, true
	}
	if !ok {
		return nil, false
	}
	return &out, true
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
