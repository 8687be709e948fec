// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/localbiz/directory-backend/internal/config"
	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/metrics"
	"github.com/localbiz/directory-backend/internal/models"
)

// Notification is the message delivered to owners or staff about a listing.
type Notification struct {
	Event        lifecycle.EventType `json:"event"`
	BusinessID   uuid.UUID           `json:"business_id"`
	BusinessName string              `json:"business_name"`
	Message      string              `json:"message"`
	Link         string              `json:"link"`
}

// Notifier delivers a notification over one channel.
type Notifier interface {
	Channel() string
	Send(ctx context.Context, n Notification) error
}

// NewNotifier builds the notifier selected by config.
func NewNotifier(cfg *config.Config) (Notifier, error) {
	switch cfg.Notification.Channel {
	case "webhook":
		return NewWebhookNotifier(cfg.Notification.WebhookURL, cfg.Notification.Timeout), nil
	case "sns":
		return NewSNSNotifier(cfg.AWS, cfg.Notification.SNSTopicARN)
	case "log", "":
		return NewLogNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notification channel %q", cfg.Notification.Channel)
	}
}

// WebhookNotifier posts the notification as JSON.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Channel() string { return "webhook" }

func (n *WebhookNotifier) Send(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// SNSNotifier publishes the notification to an SNS topic.
type SNSNotifier struct {
	client   snsiface.SNSAPI
	topicARN string
}

func NewSNSNotifier(cfg config.AWSConfig, topicARN string) (*SNSNotifier, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewSNSNotifierWithClient(sns.New(sess), topicARN), nil
}

func NewSNSNotifierWithClient(client snsiface.SNSAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (n *SNSNotifier) Channel() string { return "sns" }

func (n *SNSNotifier) Send(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	subject := snsSubject(notification.BusinessName + ": " + string(notification.Event))

	_, err = n.client.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]*sns.MessageAttributeValue{
			"event": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(notification.Event)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	return nil
}

// SNS subjects must be printable ASCII and shorter than 100 characters.
const maxSNSSubject = 99

func snsSubject(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var b strings.Builder
	for _, r := range s {
		if b.Len() == maxSNSSubject {
			break
		}
		switch {
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			b.WriteByte('?')
		}
	}
	return strings.TrimSpace(b.String())
}

// LogNotifier only logs; it is the development default.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Channel() string { return "log" }

func (n *LogNotifier) Send(ctx context.Context, notification Notification) error {
	logrus.WithFields(logrus.Fields{
		"event":       notification.Event,
		"business_id": notification.BusinessID,
		"link":        notification.Link,
	}).Info(notification.Message)
	return nil
}

var notificationTemplates = map[lifecycle.EventType]*template.Template{
	lifecycle.EventApprove:        template.Must(template.New("approve").Parse(`"{{.Name}}" is now published in the directory.`)),
	lifecycle.EventReject:         template.Must(template.New("reject").Parse(`"{{.Name}}" was not approved: {{.Reason}}`)),
	lifecycle.EventRequestInfo:    template.Must(template.New("request_info").Parse(`We need more information about "{{.Name}}": {{.Notes}}{{if .Fields}} (missing: {{.Fields}}){{end}}`)),
	lifecycle.EventUnpublish:      template.Must(template.New("unpublish").Parse(`"{{.Name}}" was unpublished: {{.Reason}}`)),
	lifecycle.EventRequestPublish: template.Must(template.New("request_publish").Parse(`"{{.Name}}" is ready for review ({{.Percent}}% complete).`)),
}

// NotificationService turns accepted transitions into notifications and
// dispatches them in the background. Failures never reach the caller.
type NotificationService struct {
	notifier Notifier
	baseURL  string
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewNotificationService(notifier Notifier, cfg *config.Config) *NotificationService {
	timeout := cfg.Notification.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NotificationService{
		notifier: notifier,
		baseURL:  strings.TrimRight(cfg.Frontend.BaseURL, "/"),
		timeout:  timeout,
	}
}

// NotifyTransition dispatches a notification when the event is one owners or
// staff need to hear about.
func (s *NotificationService) NotifyTransition(b *models.Business, e lifecycle.Event) {
	if s == nil || s.notifier == nil {
		return
	}

	n, ok := s.build(b, e)
	if !ok {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.dispatch(n)
	}()
}

// Wait blocks until every dispatched notification has finished.
func (s *NotificationService) Wait() {
	if s != nil {
		s.wg.Wait()
	}
}

func (s *NotificationService) build(b *models.Business, e lifecycle.Event) (Notification, bool) {
	tmpl, ok := notificationTemplates[e.Type]
	if !ok {
		return Notification{}, false
	}

	var message bytes.Buffer
	data := map[string]interface{}{
		"Name":    b.Name,
		"Reason":  strings.TrimSpace(e.Reason),
		"Notes":   strings.TrimSpace(e.Notes),
		"Fields":  strings.Join(b.RequestedFields, ", "),
		"Percent": b.CompletionPercent,
	}
	if err := tmpl.Execute(&message, data); err != nil {
		logrus.WithError(err).WithField("event", e.Type).Error("Failed to render notification")
		return Notification{}, false
	}

	link := fmt.Sprintf("%s/my/businesses/%s", s.baseURL, b.ID)
	if e.Type == lifecycle.EventRequestPublish {
		link = fmt.Sprintf("%s/admin/businesses/%s", s.baseURL, b.ID)
	}

	return Notification{
		Event:        e.Type,
		BusinessID:   b.ID,
		BusinessName: b.Name,
		Message:      message.String(),
		Link:         link,
	}, true
}

func (s *NotificationService) dispatch(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.notifier.Send(ctx, n); err != nil {
		metrics.NotificationFailures.WithLabelValues(s.notifier.Channel()).Inc()
		logrus.WithError(err).WithFields(logrus.Fields{
			"channel":     s.notifier.Channel(),
			"event":       n.Event,
			"business_id": n.BusinessID,
		}).Warn("Failed to deliver notification")
	}
}
