package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const defaultCallTimeout = 30 * time.Second

// Client sends gateway commands over the broker. The desktop UI process and
// the admin tooling use it; tests use it to exercise the full round trip.
type Client struct {
	conn     *nats.Conn
	language string
}

func Dial(url string, language string) (*Client, error) {
	conn, err := nats.Connect(url, nats.Name("taskdesk-client"))
	if err != nil {
		return nil, fmt.Errorf("connect bridge client: %w", err)
	}
	return &Client{conn: conn, language: language}, nil
}

// Call sends one command and waits for its reply. A context without a
// deadline gets a default one.
func (client *Client) Call(ctx context.Context, operation string, token string, args any) (Reply, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
		defer cancel()
	}

	request := Request{Token: token, Language: client.language}
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return Reply{}, fmt.Errorf("encode %s args: %w", operation, err)
		}
		request.Args = encoded
	}
	body, err := json.Marshal(request)
	if err != nil {
		return Reply{}, fmt.Errorf("encode %s request: %w", operation, err)
	}

	requestID := uuid.NewString()
	msg := nats.NewMsg(Subject(operation))
	msg.Data = body
	msg.Header.Set(RequestIDHeader, requestID)

	response, err := client.conn.RequestMsgWithContext(ctx, msg)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			return Reply{}, fmt.Errorf("no backend serves %s: %w", operation, err)
		}
		return Reply{}, fmt.Errorf("call %s: %w", operation, err)
	}
	if got := response.Header.Get(RequestIDHeader); got != requestID {
		return Reply{}, fmt.Errorf("call %s: reply id %q does not match request %q", operation, got, requestID)
	}

	var reply Reply
	if err := json.Unmarshal(response.Data, &reply); err != nil {
		return Reply{}, fmt.Errorf("decode %s reply: %w", operation, err)
	}
	return reply, nil
}

func (client *Client) Close() {
	if client.conn != nil {
		client.conn.Close()
	}
}
