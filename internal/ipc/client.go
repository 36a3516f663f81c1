package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"resty.dev/v3"
)

// Client talks to a running daemon over its control socket.
type Client struct {
	rest *resty.Client
}

func NewClient(sockPath string) *Client {
	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", sockPath)
			},
		},
	})

	client.SetBaseURL("http://inkyslide")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "inkyslide")
	client.SetTimeout(5 * time.Second)

	return &Client{rest: client}
}

func (c *Client) Close() error {
	return c.rest.Close()
}

func (c *Client) Status() (*StatusResponse, error) {
	result := StatusResponse{}

	response, err := c.rest.R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error getting status: %s", response.Status())
	}

	return &result, nil
}

func (c *Client) Next() error {
	return c.post("/next")
}

func (c *Client) Stop() error {
	return c.post("/stop")
}

func (c *Client) post(path string) error {
	result := Response{}

	response, err := c.rest.R().SetResult(&result).Post(path)
	if err != nil {
		return err
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending command: %s", response.Status())
	}
	return nil
}
