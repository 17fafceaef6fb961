package link

import (
	"fmt"
	"net"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// opTimeout bounds individual publish/subscribe token waits so the tick loop
// is never held hostage by the transport.
const opTimeout = 5 * time.Second

// pahoSession adapts the paho client to the Session interface. Automatic
// reconnection stays off: the manager owns the retry schedule.
type pahoSession struct {
	client mqtt.Client
}

// NewPahoSession builds the broker transport. The will is registered retained
// so the central system learns about ungraceful disconnects.
func NewPahoSession(brokerURL, clientID, username, password, willTopic string, willPayload []byte) Session {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetCleanSession(false).
		SetAutoReconnect(false).
		SetBinaryWill(willTopic, willPayload, 1, true)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}
	return &pahoSession{client: mqtt.NewClient(opts)}
}

func (s *pahoSession) Connect(timeout time.Duration) error {
	token := s.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("connect timed out after %s", timeout)
	}
	return token.Error()
}

func (s *pahoSession) Connected() bool {
	return s.client.IsConnectionOpen()
}

func (s *pahoSession) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := s.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

func (s *pahoSession) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	token := s.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("subscribe to %s timed out", topic)
	}
	return token.Error()
}

func (s *pahoSession) Close() {
	s.client.Disconnect(250)
}

// netProber checks plain TCP reachability of the broker host, which stands in
// for "network attached" on units without a dedicated link-state source.
type netProber struct {
	addr string
}

// NewNetProber derives the probe address from the broker URL.
func NewNetProber(brokerURL string) (Prober, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid broker url %q: %w", brokerURL, err)
	}
	host := u.Host
	if host == "" {
		return nil, fmt.Errorf("broker url %q has no host", brokerURL)
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "1883")
	}
	return &netProber{addr: host}, nil
}

func (p *netProber) Probe(timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", p.addr, timeout)
	if err != nil {
		return err
	}
	return conn.Close()
}
