// Package mqtt updates device shadows over the AWS IoT MQTT broker using
// the reserved $aws/things/<thing>/shadow topics.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"bitbucket.org/sotavant/relay-skill/internal/shadow"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	port = 8883
	qos  = 1
)

// conn is the part of paho.Client the shadow client uses.
type conn interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Disconnect(quiesce uint)
}

type Options struct {
	Endpoint string
	ClientID string
	CertFile string
	KeyFile  string
	// CAFile is optional; the system pool is used when empty.
	CAFile string
}

type result struct {
	payload []byte
	err     error
}

type Client struct {
	conn conn
	log  *zap.Logger

	mu         sync.Mutex
	pending    map[string]chan result
	subscribed map[string]bool
}

var _ shadow.Client = (*Client)(nil)

// New connects to the broker with mutual TLS.
func New(opts Options, log *zap.Logger) (*Client, error) {
	tlsCfg, err := newTLSConfig(opts)
	if err != nil {
		return nil, err
	}

	c := newClient(nil, log)

	broker := fmt.Sprintf("ssl://%s:%d", strings.ToLower(opts.Endpoint), port)
	popts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(opts.ClientID).
		SetTLSConfig(tlsCfg).
		SetCleanSession(true).
		SetKeepAlive(30 * time.Second).
		SetAutoReconnect(true)

	popts.OnConnect = func(_ paho.Client) {
		c.log.Info("mqtt connected", zap.String("broker", broker))
		// clean session: subscriptions have to be renewed
		c.mu.Lock()
		c.subscribed = map[string]bool{}
		c.mu.Unlock()
	}
	popts.OnConnectionLost = func(_ paho.Client, err error) {
		c.log.Error("mqtt connection lost", zap.Error(err))
	}

	cli := paho.NewClient(popts)
	if t := cli.Connect(); t.Wait() && t.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, t.Error())
	}
	c.conn = cli

	return c, nil
}

func newClient(cn conn, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		conn:       cn,
		log:        log,
		pending:    map[string]chan result{},
		subscribed: map[string]bool{},
	}
}

func newTLSConfig(opts Options) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load client certificate: %w", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if opts.CAFile != "" {
		pem, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("no certificates found in ca file")
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}

func updateTopic(thingName string) string {
	return "$aws/things/" + thingName + "/shadow/update"
}

func (c *Client) UpdateDesiredState(ctx context.Context, thingName string, desired shadow.DesiredState) ([]byte, error) {
	if err := c.subscribe(ctx, thingName); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	doc := shadow.NewDocument(desired)
	doc.ClientToken = token

	payload, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	ch := make(chan result, 1)
	c.mu.Lock()
	c.pending[token] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, token)
		c.mu.Unlock()
	}()

	if err := wait(ctx, c.conn.Publish(updateTopic(thingName), qos, false, payload)); err != nil {
		return nil, fmt.Errorf("publish shadow update of %s: %w", thingName, err)
	}

	select {
	case r := <-ch:
		return r.payload, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for shadow update of %s: %w", thingName, ctx.Err())
	}
}

func (c *Client) subscribe(ctx context.Context, thingName string) error {
	c.mu.Lock()
	done := c.subscribed[thingName]
	c.mu.Unlock()
	if done {
		return nil
	}

	base := updateTopic(thingName)
	for _, topic := range []string{base + "/accepted", base + "/rejected"} {
		if err := wait(ctx, c.conn.Subscribe(topic, qos, c.onResponse)); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	c.mu.Lock()
	c.subscribed[thingName] = true
	c.mu.Unlock()

	return nil
}

type response struct {
	ClientToken string `json:"clientToken"`
	Code        int    `json:"code"`
	Message     string `json:"message"`
}

func (c *Client) onResponse(_ paho.Client, msg paho.Message) {
	var resp response
	if err := json.Unmarshal(msg.Payload(), &resp); err != nil {
		c.log.Debug("cannot decode shadow response", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[resp.ClientToken]
	c.mu.Unlock()
	if !ok {
		// another client's update, or one we stopped waiting for
		return
	}

	r := result{payload: msg.Payload()}
	if strings.HasSuffix(msg.Topic(), "/rejected") {
		r = result{err: fmt.Errorf("%w: %d %s", shadow.ErrRejected, resp.Code, resp.Message)}
	}

	select {
	case ch <- r:
	default:
	}
}

func (c *Client) Close() {
	c.conn.Disconnect(250)
}

func wait(ctx context.Context, t paho.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
