package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"linkstash/internal/metrics"
	"linkstash/internal/models"
)

// ChangeSubscriber delivers row-change notifications for the session owner's
// bookmark set. The returned subscription must be closed by the caller on
// every exit path.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, sess *models.Session, handler func(models.ChangeEvent)) (io.Closer, error)
}

type realtimeClient struct {
	baseURL string
	apiKey  string
	dialer  *websocket.Dialer
}

func NewRealtimeClient(baseURL, apiKey string) ChangeSubscriber {
	return &realtimeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Subscription is a handle on an open change feed. Close is idempotent and
// unblocks the reader goroutine.
type Subscription struct {
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = s.conn.Close()
		close(s.done)
	})
	return err
}

// Done is closed once the feed has shut down, whether by Close or by the
// server ending the stream.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (c *realtimeClient) Subscribe(ctx context.Context, sess *models.Session, handler func(models.ChangeEvent)) (io.Closer, error) {
	query := url.Values{}
	query.Set("owner", sess.UserID)
	endpoint := c.baseURL + "/v1/changes?" + query.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+sess.Token)
	if c.apiKey != "" {
		header.Set("X-Api-Key", c.apiKey)
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to open change feed: %w", err)
	}

	sub := &Subscription{conn: conn, done: make(chan struct{})}

	go func() {
		for {
			var event models.ChangeEvent
			if err := conn.ReadJSON(&event); err != nil {
				select {
				case <-sub.done:
				default:
					log.Warn().Err(err).Str("userID", sess.UserID).Msg("Change feed closed by server")
					sub.Close()
				}
				return
			}
			switch event.Kind {
			case models.ChangeInsert, models.ChangeUpdate, models.ChangeDelete:
				metrics.ChangeEventsTotal.WithLabelValues(event.Kind).Inc()
				handler(event)
			default:
				log.Debug().Str("kind", event.Kind).Msg("Ignoring unknown change event kind")
			}
		}
	}()

	log.Info().Str("userID", sess.UserID).Msg("Subscribed to bookmark change feed")
	return sub, nil
}
