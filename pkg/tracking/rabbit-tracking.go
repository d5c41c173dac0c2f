package tracking

import (
	"context"
	"log"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/matst80/plat-finder/pkg/messaging"
	"github.com/matst80/plat-finder/pkg/types"
)

type RabbitTracking struct {
	prefix     string
	connection *amqp.Connection
	send       func(data any) error
}

func NewRabbitTracking(url, prefix string) (*RabbitTracking, error) {
	ret := &RabbitTracking{prefix: prefix}
	if err := ret.connect(url); err != nil {
		return nil, err
	}
	ret.send = ret.publish
	return ret, nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	t.connection = conn
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return messaging.DefineTopic(ch, t.prefix, messaging.Tracking)
}

func (t *RabbitTracking) Close() error {
	if t.connection == nil {
		return nil
	}
	return t.connection.Close()
}

func (t *RabbitTracking) publish(data any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return messaging.SendChange(ctx, t.connection, t.prefix, messaging.Tracking, data)
}

type BaseEvent struct {
	SessionId int    `json:"session_id"`
	Context   string `json:"context,omitempty"`
	Event     uint16 `json:"event"`
	Time      int64  `json:"ts"`
}

const (
	eventSession uint16 = 0
	eventAction  uint16 = 6
)

type Session struct {
	*BaseEvent
	UserAgent string `json:"user_agent,omitempty"`
	Ip        string `json:"ip,omitempty"`
	Language  string `json:"language,omitempty"`
}

type ActionEvent struct {
	*BaseEvent
	Action string            `json:"action"`
	Params map[string]string `json:"params,omitempty"`
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func (t *RabbitTracking) base(sessionId int, event uint16) *BaseEvent {
	return &BaseEvent{Event: event, SessionId: sessionId, Context: t.prefix, Time: time.Now().Unix()}
}

func (t *RabbitTracking) TrackSession(sessionId int, r *http.Request) {
	err := t.send(Session{
		BaseEvent: t.base(sessionId, eventSession),
		Language:  r.Header.Get("Accept-Language"),
		UserAgent: r.UserAgent(),
		Ip:        clientIp(r),
	})
	if err != nil {
		log.Println("Error sending session event: ", err)
	}
}

func (t *RabbitTracking) TrackEvent(sessionId int, event types.TrackingEvent) {
	err := t.send(&ActionEvent{
		BaseEvent: t.base(sessionId, eventAction),
		Action:    event.Name,
		Params:    event.Params,
	})
	if err != nil {
		log.Println("Error sending tracking event: ", err)
	}
}
