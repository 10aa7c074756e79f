package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/liftbank/core/events"
	"github.com/kilianp07/liftbank/core/model"
	coremon "github.com/kilianp07/liftbank/core/monitoring"
	"github.com/kilianp07/liftbank/infra/logger"
	"github.com/kilianp07/liftbank/internal/eventbus"
)

// DefaultTopicPrefix is used when Config.TopicPrefix is empty.
const DefaultTopicPrefix = "liftbank"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker" yaml:"broker"`
	ClientID    string          `json:"client_id" yaml:"client_id"`
	Username    string          `json:"username" yaml:"username"`
	Password    string          `json:"password" yaml:"password"`
	TopicPrefix string          `json:"topic_prefix" yaml:"topic_prefix"`
	UseTLS      bool            `json:"use_tls" yaml:"use_tls"`
	ClientCert  string          `json:"client_cert" yaml:"client_cert"`
	ClientKey   string          `json:"client_key" yaml:"client_key"`
	CABundle    string          `json:"ca_bundle" yaml:"ca_bundle"`
	AuthMethod  string          `json:"auth_method" yaml:"auth_method"`
	QoS         map[string]byte `json:"qos" yaml:"qos"`
	LWTTopic    string          `json:"lwt_topic" yaml:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload" yaml:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos" yaml:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain" yaml:"lwt_retain"`
	MaxRetries  int             `json:"max_retries" yaml:"max_retries"`
	BackoffMS   int             `json:"backoff_ms" yaml:"backoff_ms"`
	CallBuffer  int             `json:"call_buffer" yaml:"call_buffer"`
	TLSConfig   *tls.Config     `json:"-" yaml:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient bridges the dispatcher and an MQTT broker. Hall calls received
// on the call topic are delivered on Calls; car phase changes are published
// as retained messages on one state topic per car.
type PahoClient struct {
	cli        pahoClient
	prefix     string
	qos        map[string]byte
	calls      chan model.Call
	listen     bool
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the call topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	return connect(cfg, true)
}

// NewPublisher connects to the MQTT broker without subscribing to calls.
func NewPublisher(cfg Config) (*PahoClient, error) {
	return connect(cfg, false)
}

func connect(cfg Config, listen bool) (*PahoClient, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = "liftbank-" + uuid.NewString()[:8]
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	buf := cfg.CallBuffer
	if buf <= 0 {
		buf = 64
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := time.Duration(cfg.BackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:     prefix,
		qos:        cfg.QoS,
		calls:      make(chan model.Call, buf),
		listen:     listen,
		logger:     log,
		maxRetries: maxRetries,
		backoff:    backoff,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if !pc.listen {
			return
		}
		if token := c.Subscribe(pc.CallTopic(), pc.qosFor("call"), pc.onCall); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// CallTopic is the topic hall calls are read from.
func (p *PahoClient) CallTopic() string { return p.prefix + "/call" }

// StateTopic is the topic the phases of car id are published to.
func (p *PahoClient) StateTopic(id int) string {
	return fmt.Sprintf("%s/car/%d/state", p.prefix, id)
}

// Calls delivers decoded hall calls. Calls that arrive while the channel is
// full are dropped.
func (p *PahoClient) Calls() <-chan model.Call { return p.calls }

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

func (p *PahoClient) onCall(_ paho.Client, msg paho.Message) {
	call, err := decodeCall(msg.Payload())
	if err != nil {
		p.logger.Errorf("failed to decode call: %v", err)
		return
	}
	select {
	case p.calls <- call:
		p.logger.Debugf("received call %s", call)
	default:
		p.logger.Warnf("call buffer full, dropping %s", call)
	}
}

// PublishCall sends a hall call to the call topic.
func (p *PahoClient) PublishCall(call model.Call) error {
	payload, err := encodeCall(call)
	if err != nil {
		return err
	}
	return p.publish(p.CallTopic(), p.qosFor("call"), false, payload)
}

// PublishPhase publishes a car phase change as a retained message.
func (p *PahoClient) PublishPhase(ev events.PhaseEvent) error {
	payload, err := encodePhase(ev)
	if err != nil {
		return err
	}
	return p.publish(p.StateTopic(ev.CarID), p.qosFor("state"), true, payload)
}

func (p *PahoClient) publish(topic string, qos byte, retained bool, payload []byte) error {
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published to %s", topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Forward publishes the phase events received on sub until ctx is done or
// sub is closed. Other events are ignored.
func (p *PahoClient) Forward(ctx context.Context, sub <-chan eventbus.Event) {
	defer coremon.Recover()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			pe, isPhase := ev.(events.PhaseEvent)
			if !isPhase {
				continue
			}
			if err := p.PublishPhase(pe); err != nil {
				p.logger.Errorf("publish car %d state: %v", pe.CarID, err)
				coremon.CaptureException(err, map[string]string{"module": "mqtt", "car": strconv.Itoa(pe.CarID)})
			}
		}
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
