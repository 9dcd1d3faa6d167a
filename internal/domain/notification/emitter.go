package notification

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/platform/metrics"
	notify "github.com/carepoint/portal/internal/platform/notification"
	"github.com/carepoint/portal/internal/platform/websocket"
)

// EventCreated is the websocket event type for a new notification.
const EventCreated = "notification.created"

// Publisher pushes an event to connected clients.
type Publisher interface {
	Publish(ctx context.Context, event websocket.Event) error
}

// Emitter stores a notice as a notifications row and pushes it to the
// recipient's topic. It implements notify.Emitter.
type Emitter struct {
	repo   Repository
	engine *notify.TemplateEngine
	pub    Publisher
	logger zerolog.Logger
}

func NewEmitter(repo Repository, engine *notify.TemplateEngine, pub Publisher, logger zerolog.Logger) *Emitter {
	return &Emitter{repo: repo, engine: engine, pub: pub, logger: logger}
}

var _ notify.Emitter = (*Emitter)(nil)

// Emit never fails the caller. Errors are logged against the request logger
// when there is one and counted.
func (e *Emitter) Emit(ctx context.Context, n notify.Notice) {
	log := e.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		log = *l
	}
	log = log.With().Str("template", n.Template).Str("recipient", n.UserID.String()).Logger()

	rendered, err := e.engine.Render(n.Template, n.Data)
	if err != nil {
		e.fail(log, n.Template, err, "render notification")
		return
	}
	kind := rendered.Kind
	if n.Type != "" {
		kind = n.Type
	}

	row := &Notification{
		UserID:    n.UserID,
		Title:     rendered.Title,
		Message:   rendered.Message,
		Type:      string(kind),
		RelatedID: n.RelatedID,
	}
	if err := e.repo.Create(ctx, row); err != nil {
		e.fail(log, n.Template, err, "store notification")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(n.Template, "delivered").Inc()

	if e.pub == nil {
		return
	}
	data, err := json.Marshal(row)
	if err != nil {
		log.Warn().Err(err).Msg("encode notification event")
		return
	}
	event := websocket.Event{
		Type:  EventCreated,
		Topic: websocket.UserTopic(n.UserID),
		Data:  data,
	}
	if err := e.pub.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Msg("push notification")
	}
}

func (e *Emitter) fail(log zerolog.Logger, template string, err error, msg string) {
	metrics.NotificationsTotal.WithLabelValues(template, "failed").Inc()
	log.Error().Err(err).Msg(msg)
}
