package notify

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// Notification is one message to push.
type Notification struct {
	Title    string
	Message  string
	Priority int // 1=min, 2=low, 3=default, 4=high, 5=urgent
	Tags     []string
}

// Sender delivers notifications to a topic. Returns whether delivery
// succeeded; senders never return errors because the caller treats
// delivery as best-effort.
type Sender interface {
	Send(ctx context.Context, topic string, n Notification) bool
}

// NtfySender delivers notifications over the ntfy HTTP API.
type NtfySender struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewNtfySender creates a sender against the given ntfy server.
func NewNtfySender(baseURL string, timeout time.Duration) *NtfySender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfySender{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logging.Default(),
	}
}

// SetLogger sets the logger for delivery diagnostics.
func (s *NtfySender) SetLogger(logger *logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Send posts the notification to {baseURL}/{topic}. The message rides
// in the body; title, priority, and tags go in headers per the ntfy
// publishing API.
func (s *NtfySender) Send(ctx context.Context, topic string, n Notification) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/"+topic, strings.NewReader(n.Message))
	if err != nil {
		s.logger.Error("building notification request", "error", err)
		return false
	}

	req.Header.Set("Title", n.Title)
	req.Header.Set("Priority", strconv.Itoa(n.Priority))
	if len(n.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(n.Tags, ","))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("notification delivery failed", "title", n.Title, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("notification rejected", "title", n.Title, "status", resp.StatusCode)
		return false
	}

	s.logger.Info("notification sent", "title", n.Title)
	return true
}
