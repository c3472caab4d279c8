package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"hotelbook/internal/logger"
	"hotelbook/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

const (
	TypeBookingConfirmation = "booking_confirmation"
	TypeBookingRefund       = "booking_refund"
	TypeWithdrawalDecision  = "withdrawal_decision"
	TypeDepositReceived     = "deposit_received"
)

type EmailJob struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// BookingNotice carries what the guest sees in booking emails.
type BookingNotice struct {
	BookingID  int
	HotelName  string
	RoomName   string
	CheckIn    time.Time
	CheckOut   time.Time
	Total      decimal.Decimal
	ReceiptRef string
}

type WithdrawalNotice struct {
	RequestID int
	Amount    decimal.Decimal
	BankName  string
	Approved  bool
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// Service queues mail on a Redis list and delivers it from a worker loop.
type Service struct {
	redis      *redis.Client
	cfg        Config
	retryDelay time.Duration
	sendMail   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New uses rdb for the queue. The caller owns the client.
func New(cfg Config, rdb *redis.Client) *Service {
	return &Service{
		redis:      rdb,
		cfg:        cfg,
		retryDelay: 5 * time.Second,
		sendMail:   smtp.SendMail,
	}
}

func (s *Service) Send(ctx context.Context, emailType, to, name, subject, body string) error {
	job := EmailJob{
		Type:    emailType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		metrics.RecordEmail(emailType, "queue_failed")
		return err
	}

	metrics.RecordEmail(emailType, "queued")
	logger.Infof("Email queued: %s to %s", subject, to)
	return nil
}

// Start delivers queued mail until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < maxTries {
			select {
			case <-ctx.Done():
			case <-time.After(s.retryDelay):
			}
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, string(data))
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxTries)
			metrics.RecordEmail(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	return s.sendMail(addr, auth, s.cfg.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, string(data))
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) SendBookingConfirmation(ctx context.Context, to, name string, n BookingNotice) error {
	subject := fmt.Sprintf("Booking #%d confirmed - %s", n.BookingID, n.HotelName)
	body := fmt.Sprintf(`Hi %s,

Your stay is paid and confirmed!

Hotel: %s
Room: %s
Check-in: %s
Check-out: %s
Total paid: %s
Receipt: %s

We look forward to hosting you.

- Hotelbook Team`, name, n.HotelName, n.RoomName,
		n.CheckIn.Format("Jan 2, 2006"), n.CheckOut.Format("Jan 2, 2006"),
		n.Total.StringFixed(2), n.ReceiptRef)

	return s.Send(ctx, TypeBookingConfirmation, to, name, subject, body)
}

func (s *Service) SendRefundNotice(ctx context.Context, to, name string, n BookingNotice) error {
	subject := fmt.Sprintf("Booking #%d refunded", n.BookingID)
	body := fmt.Sprintf(`Hi %s,

Your booking has been refunded to your wallet:

Hotel: %s
Room: %s
Dates: %s - %s
Amount: %s


- Hotelbook Team`, name, n.HotelName, n.RoomName,
		n.CheckIn.Format("Jan 2, 2006"), n.CheckOut.Format("Jan 2, 2006"),
		n.Total.StringFixed(2))

	return s.Send(ctx, TypeBookingRefund, to, name, subject, body)
}

func (s *Service) SendWithdrawalDecision(ctx context.Context, to, name string, n WithdrawalNotice) error {
	outcome := "refused"
	detail := "No money has left your wallet."
	if n.Approved {
		outcome = "approved"
		detail = fmt.Sprintf("The amount has been debited from your wallet and sent to %s.", n.BankName)
	}

	subject := fmt.Sprintf("Withdrawal #%d %s", n.RequestID, outcome)
	body := fmt.Sprintf(`Hi %s,

Your withdrawal request of %s was %s.
%s

- Hotelbook Team`, name, n.Amount.StringFixed(2), outcome, detail)

	return s.Send(ctx, TypeWithdrawalDecision, to, name, subject, body)
}

func (s *Service) SendDepositReceived(ctx context.Context, to, name string, amount decimal.Decimal, ref string) error {
	subject := "Wallet top-up received"
	body := fmt.Sprintf(`Hi %s,

We received your deposit of %s (reference %s). It is now available in your wallet.

- Hotelbook Team`, name, amount.StringFixed(2), ref)

	return s.Send(ctx, TypeDepositReceived, to, name, subject, body)
}
