package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// FlushWithContext refuses a context without a deadline.
const flushTimeout = 5 * time.Second

// NATSPublisher hands records to whatever archives them downstream by
// publishing JSON on {prefix}.created and {prefix}.finished.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, prefix string, logger zerolog.Logger) (*NATSPublisher, error) {
	if prefix == "" {
		prefix = "millebornes.games"
	}
	opts := []nats.Option{
		nats.Name("millebornes"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}, nil
}

// CreatedSubject and FinishedSubject are the subjects records go out on.
func (p *NATSPublisher) CreatedSubject() string  { return p.prefix + ".created" }
func (p *NATSPublisher) FinishedSubject() string { return p.prefix + ".finished" }

func (p *NATSPublisher) CreateGame(ctx context.Context, rec Record) error {
	return p.publish(ctx, p.CreatedSubject(), rec)
}

func (p *NATSPublisher) FinishGame(ctx context.Context, res Result) error {
	return p.publish(ctx, p.FinishedSubject(), res)
}

// publish sends v and flushes so a failure surfaces to the caller instead of
// being lost in the client buffer.
func (p *NATSPublisher) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
