package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/metrics"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/payments"
)

// AccountSource lists tracked accounts and records sent reminders
type AccountSource interface {
	ListLiveAccounts(ctx context.Context) ([]models.LiveAccount, error)
	MarkReminderSent(ctx context.Context, accountID int64, paymentDate time.Time) (bool, error)
}

// ReminderSender delivers one reminder
type ReminderSender interface {
	SendPaymentReminder(to, name string, rec models.PaymentRecommendation) error
}

// ReminderJob emails account owners leadDays before each optimal payment date
type ReminderJob struct {
	source   AccountSource
	sender   ReminderSender
	leadDays int
	now      func() time.Time
	log      *logrus.Logger
}

// NewReminderJob creates a reminder job using the wall clock
func NewReminderJob(source AccountSource, sender ReminderSender, leadDays int, log *logrus.Logger) *ReminderJob {
	return &ReminderJob{
		source:   source,
		sender:   sender,
		leadDays: leadDays,
		now:      time.Now,
		log:      log,
	}
}

// Run sends every reminder due today and returns how many were sent. A reminder
// is recorded before it is sent, so a failed send is not retried.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	accounts, err := j.source.ListLiveAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load accounts for reminders: %w", err)
	}

	today := dateOnly(j.now())
	sent := 0
	for _, acc := range accounts {
		if acc.CreditLimit <= 0 || acc.OwnerEmail == "" {
			continue
		}
		rec := payments.RecommendationFor(acc)
		payDate := dateOnly(rec.OptimalPaymentDate)
		if !payDate.AddDate(0, 0, -j.leadDays).Equal(today) {
			continue
		}

		first, err := j.source.MarkReminderSent(ctx, acc.ID, payDate)
		if err != nil {
			j.log.Errorf("Failed to record reminder for account %d: %v", acc.ID, err)
			metrics.RemindersSent.WithLabelValues("failed").Inc()
			continue
		}
		if !first {
			metrics.RemindersSent.WithLabelValues("skipped").Inc()
			continue
		}

		if err := j.sender.SendPaymentReminder(acc.OwnerEmail, acc.OwnerName, rec); err != nil {
			metrics.RemindersSent.WithLabelValues("failed").Inc()
			continue
		}
		metrics.RemindersSent.WithLabelValues("sent").Inc()
		sent++
	}

	j.log.Infof("Payment reminders sent: %d of %d accounts", sent, len(accounts))
	return sent, nil
}

// Start schedules the job on a cron spec such as "0 8 * * *"
func Start(spec string, job *ReminderJob) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := job.Run(context.Background()); err != nil {
			job.log.Errorf("Reminder job failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
