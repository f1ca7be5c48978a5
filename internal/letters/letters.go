// Package letters renders credit bureau dispute letters.
package letters

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/bureau"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

const dateLayout = "January 2, 2006"

// ErrUnknownLetterType is returned for a letter type with no registered template
var ErrUnknownLetterType = errors.New("unknown letter type")

// ErrMissingConsumer is returned when the consumer name is empty
var ErrMissingConsumer = errors.New("consumer name is required")

type template func(in models.LetterInput) (subject, body string)

var templates map[models.LetterType]template

func init() {
	templates = map[models.LetterType]template{
		models.LetterNotMine:               notMine,
		models.LetterInaccurateLatePayment: inaccurateLatePayment,
		models.LetterIncorrectBalance:      incorrectBalance,
		models.LetterObsoleteItem:          obsoleteItem,
		models.LetterIdentityTheft:         identityTheft,
		models.LetterDebtValidation:        debtValidation,
	}
}

// bureauAddresses are the consumer dispute mailing addresses
var bureauAddresses = map[models.Bureau]string{
	models.BureauEquifax:    "Equifax Information Services LLC\nP.O. Box 740256\nAtlanta, GA 30374",
	models.BureauExperian:   "Experian\nP.O. Box 4500\nAllen, TX 75013",
	models.BureauTransUnion: "TransUnion LLC\nConsumer Dispute Center\nP.O. Box 2000\nChester, PA 19016",
}

// Types lists the supported letter types
func Types() []models.LetterType {
	return []models.LetterType{
		models.LetterNotMine,
		models.LetterInaccurateLatePayment,
		models.LetterIncorrectBalance,
		models.LetterObsoleteItem,
		models.LetterIdentityTheft,
		models.LetterDebtValidation,
	}
}

// Generate renders a letter of the given type. Debt validation letters go to the
// creditor; all others go to in.Bureau.
func Generate(letterType models.LetterType, in models.LetterInput) (models.DisputeLetter, error) {
	tmpl, ok := templates[letterType]
	if !ok {
		return models.DisputeLetter{}, fmt.Errorf("%w: %q", ErrUnknownLetterType, letterType)
	}
	if strings.TrimSpace(in.ConsumerName) == "" {
		return models.DisputeLetter{}, ErrMissingConsumer
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	recipient := in.CreditorName
	if letterType != models.LetterDebtValidation {
		addr, ok := bureauAddresses[in.Bureau]
		if !ok {
			return models.DisputeLetter{}, fmt.Errorf("letter recipient: %w: %q", bureau.ErrUnknownBureau, in.Bureau)
		}
		recipient = addr
	}

	subject, body := tmpl(in)
	reference := strings.ToUpper(uuid.NewString()[:8])

	return models.DisputeLetter{
		Reference: reference,
		Type:      letterType,
		Recipient: recipient,
		Subject:   subject,
		Body:      frame(in, recipient, reference, subject, body),
	}, nil
}

func frame(in models.LetterInput, recipient, reference, subject, body string) string {
	var b strings.Builder
	b.WriteString(in.ConsumerName + "\n")
	if in.ConsumerAddress != "" {
		b.WriteString(in.ConsumerAddress + "\n")
	}
	b.WriteString("\n" + in.Date.Format(dateLayout) + "\n\n")
	b.WriteString(recipient + "\n\n")
	fmt.Fprintf(&b, "Re: %s (Reference %s)\n\n", subject, reference)
	b.WriteString("To whom it may concern,\n\n")
	b.WriteString(body)
	b.WriteString("\n\nSincerely,\n\n" + in.ConsumerName + "\n")
	return b.String()
}

func account(in models.LetterInput) string {
	if in.AccountNumber == "" {
		return in.CreditorName
	}
	return fmt.Sprintf("%s, account %s", in.CreditorName, in.AccountNumber)
}

func itemDate(in models.LetterInput) string {
	if in.ItemDate.IsZero() {
		return "an unspecified date"
	}
	return in.ItemDate.Format(dateLayout)
}

func notMine(in models.LetterInput) (string, string) {
	return "Dispute of account not belonging to me",
		fmt.Sprintf("My credit report lists the account %s. This account does not belong to me and I have never "+
			"had a relationship with this creditor. Under the Fair Credit Reporting Act, section 611, please "+
			"investigate this item and remove it from my file.\n\n"+
			"Please send me written confirmation of the result of your investigation within 30 days.",
			account(in))
}

func inaccurateLatePayment(in models.LetterInput) (string, string) {
	return "Dispute of inaccurate late payment",
		fmt.Sprintf("My credit report shows a late payment on %s reported for %s. This payment was made on time "+
			"and the late mark is inaccurate. Please investigate under section 611 of the Fair Credit Reporting "+
			"Act and correct the payment history for this account to show it as paid as agreed.",
			account(in), itemDate(in))
}

func incorrectBalance(in models.LetterInput) (string, string) {
	return "Dispute of incorrect balance",
		fmt.Sprintf("My credit report lists a balance of %s on %s. The correct balance is %s. Please investigate "+
			"this discrepancy with the furnisher and update the reported balance to the correct amount.",
			orUnknown(in.ReportedValue), account(in), orUnknown(in.CorrectValue))
}

func obsoleteItem(in models.LetterInput) (string, string) {
	return "Request to remove obsolete item",
		fmt.Sprintf("My credit report still lists %s with a date of first delinquency of %s. Under section 605 of "+
			"the Fair Credit Reporting Act, most negative items may not be reported for more than seven years. "+
			"Please remove this obsolete item from my file.",
			account(in), itemDate(in))
}

func identityTheft(in models.LetterInput) (string, string) {
	return "Block of information resulting from identity theft",
		fmt.Sprintf("I am a victim of identity theft. The account %s was opened or used without my authorization. "+
			"Under section 605B of the Fair Credit Reporting Act, please block this information from my credit "+
			"report within four business days. A copy of my identity theft report and proof of identity are enclosed.",
			account(in))
}

func debtValidation(in models.LetterInput) (string, string) {
	return "Request for debt validation",
		fmt.Sprintf("I am writing regarding %s. Under section 809(b) of the Fair Debt Collection Practices Act, I "+
			"request validation of this debt: the amount owed, the name of the original creditor, and a copy of "+
			"any signed agreement. Until this debt is validated, please cease collection activity and do not "+
			"report it to any credit bureau.",
			account(in))
}

func orUnknown(v string) string {
	if v == "" {
		return "an unknown amount"
	}
	return v
}
