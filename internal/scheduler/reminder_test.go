package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

type fakeSource struct {
	accounts []models.LiveAccount
	listErr  error
	marked   map[int64]bool
}

func (f *fakeSource) ListLiveAccounts(context.Context) ([]models.LiveAccount, error) {
	return f.accounts, f.listErr
}

func (f *fakeSource) MarkReminderSent(_ context.Context, id int64, _ time.Time) (bool, error) {
	if f.marked[id] {
		return false, nil
	}
	f.marked[id] = true
	return true, nil
}

type sentReminder struct {
	to, name string
	rec      models.PaymentRecommendation
}

type fakeSender struct {
	sent []sentReminder
	fail map[string]bool
}

func (f *fakeSender) SendPaymentReminder(to, name string, rec models.PaymentRecommendation) error {
	if f.fail[to] {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, sentReminder{to: to, name: name, rec: rec})
	return nil
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func newJob(source AccountSource, sender ReminderSender, lead int, now time.Time) *ReminderJob {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	job := NewReminderJob(source, sender, lead, logger)
	job.now = func() time.Time { return now }
	return job
}

func TestReminderJob_Run(t *testing.T) {
	source := &fakeSource{
		marked: map[int64]bool{},
		accounts: []models.LiveAccount{
			// statement 03-15, optimal 03-11, reminder 03-10
			{ID: 1, OwnerEmail: "jane@example.com", OwnerName: "Jane", Name: "Visa",
				StatementDate: day(time.March, 15), DueDate: day(time.April, 9), CurrentBalance: 5000, CreditLimit: 10000},
			// estimated statement 03-13, optimal 03-09
			{ID: 2, OwnerEmail: "jane@example.com", OwnerName: "Jane", Name: "Amex",
				DueDate: day(time.April, 5), CurrentBalance: 100, CreditLimit: 1000},
			{ID: 3, OwnerEmail: "sam@example.com", OwnerName: "Sam", Name: "Loan",
				StatementDate: day(time.March, 15), DueDate: day(time.April, 9), CurrentBalance: 100},
			{ID: 4, Name: "Orphan", StatementDate: day(time.March, 15), DueDate: day(time.April, 9), CreditLimit: 500},
		},
	}
	sender := &fakeSender{}
	job := newJob(source, sender, 1, time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC))

	sent, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jane@example.com", sender.sent[0].to)
	assert.Equal(t, "Jane", sender.sent[0].name)
	assert.Equal(t, "Visa", sender.sent[0].rec.AccountName)
	assert.Contains(t, sender.sent[0].rec.Reasoning, "2024-03-11")

	sent, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent, "already reminded")
}

func TestReminderJob_SameDayLead(t *testing.T) {
	source := &fakeSource{
		marked: map[int64]bool{},
		accounts: []models.LiveAccount{
			{ID: 2, OwnerEmail: "jane@example.com", Name: "Amex", DueDate: day(time.April, 5), CreditLimit: 1000},
		},
	}
	sender := &fakeSender{}

	sent, err := newJob(source, sender, 0, day(time.March, 9)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestReminderJob_SendFailure(t *testing.T) {
	source := &fakeSource{
		marked: map[int64]bool{},
		accounts: []models.LiveAccount{
			{ID: 1, OwnerEmail: "bad@example.com", Name: "Visa", StatementDate: day(time.March, 15), DueDate: day(time.April, 9), CreditLimit: 1000},
			{ID: 2, OwnerEmail: "ok@example.com", Name: "Amex", StatementDate: day(time.March, 15), DueDate: day(time.April, 9), CreditLimit: 1000},
		},
	}
	sender := &fakeSender{fail: map[string]bool{"bad@example.com": true}}

	sent, err := newJob(source, sender, 1, day(time.March, 10)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, "ok@example.com", sender.sent[0].to)
}

func TestReminderJob_ListError(t *testing.T) {
	source := &fakeSource{listErr: errors.New("db down")}
	_, err := newJob(source, &fakeSender{}, 1, day(time.March, 10)).Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestStart_InvalidSpec(t *testing.T) {
	job := newJob(&fakeSource{}, &fakeSender{}, 1, day(time.March, 10))
	_, err := Start("not a schedule", job)
	assert.Error(t, err)

	c, err := Start("0 8 * * *", job)
	require.NoError(t, err)
	c.Stop()
}
