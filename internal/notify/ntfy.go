// Package notify pushes short operator messages to an ntfy topic.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"resty.dev/v3"
)

type Message struct {
	Title    string
	Body     string
	Tags     []string
	Priority int // 1 (min) to 5 (max), 0 leaves the server default
}

// Notifier delivers a message. Delivery problems are returned, never fatal.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Ntfy posts to an ntfy topic URL. An empty URL turns every Notify into a
// logged no-op.
type Ntfy struct {
	url    string
	rest   *resty.Client
	logger *log.Logger
}

func NewNtfy(url string, logger *log.Logger) *Ntfy {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetHeader("User-Agent", "inkyslide")

	return &Ntfy{url: strings.TrimSpace(url), rest: client, logger: logger}
}

func (n *Ntfy) Close() error {
	return n.rest.Close()
}

func (n *Ntfy) Notify(ctx context.Context, msg Message) error {
	if n.url == "" {
		n.logger.Info("Notification URL not set, skipping", "title", msg.Title)
		return nil
	}

	req := n.rest.R().
		SetContext(ctx).
		SetHeader("Title", msg.Title).
		SetHeader("Content-Type", "text/plain; charset=utf-8").
		SetBody(msg.Body)
	if len(msg.Tags) > 0 {
		req.SetHeader("Tags", strings.Join(msg.Tags, ","))
	}
	if msg.Priority > 0 {
		req.SetHeader("Priority", strconv.Itoa(msg.Priority))
	}

	response, err := req.Post(n.url)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("sending notification: %s", response.Status())
	}

	n.logger.Info("Notification sent", "title", msg.Title, "status", response.StatusCode())
	return nil
}
