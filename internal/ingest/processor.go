// Package ingest is the asynchronous half of the webhook pipeline: it tracks
// device lifecycle transitions and persists normalized message and contact
// records. Webhook acknowledgment never waits on anything in this package;
// every processing error ends in the log, not in an HTTP response.
package ingest

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/chatfusion/warelay/internal/normalize"
	"github.com/chatfusion/warelay/internal/store"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// TopicWebhookEvent is the bus topic webhook deliveries are published on.
const TopicWebhookEvent = "webhook:event"

const defaultPoolSize = 32

// Event is one authenticated webhook delivery, resolved to its session,
// declared type, and data payload.
type Event struct {
	SessionId string
	DataType  string
	Data      map[string]interface{}
}

type Processor struct {
	store store.RecordStore
	bus   EventBus.Bus
	pool  *ants.Pool
}

// NewProcessor wires the processor onto a fresh event bus with an ants worker
// pool for bulk contact syncs.
func NewProcessor(st store.RecordStore, poolSize int) (*Processor, error) {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	p := &Processor{store: st, bus: EventBus.New(), pool: pool}
	// transactional: deliveries for the topic run one at a time in publish
	// order, so the stored status always reflects the last event received
	if err := p.bus.SubscribeAsync(TopicWebhookEvent, p.Handle, true); err != nil {
		pool.Release()
		return nil, err
	}
	return p, nil
}

// Dispatch publishes the event for asynchronous processing and returns
// immediately.
func (p *Processor) Dispatch(evt Event) {
	p.bus.Publish(TopicWebhookEvent, evt)
}

// Wait blocks until all in-flight bus deliveries finish. Test helper.
func (p *Processor) Wait() {
	p.bus.WaitAsync()
}

func (p *Processor) Close() {
	p.bus.WaitAsync()
	p.pool.Release()
}

// Handle is the bus subscriber for webhook events. It applies the lifecycle
// transition rule and persists message/contact payloads. All errors are
// logged and swallowed; the webhook has already been acknowledged.
func (p *Processor) Handle(evt Event) {
	ctx := context.Background()

	if !Recognized(evt.DataType) {
		zap.L().Debug("ingest: ignoring unrecognized dataType",
			zap.String("data_type", evt.DataType), zap.String("session_id", evt.SessionId))
		return
	}

	if status, ok := StatusForDataType(evt.DataType); ok {
		err := p.store.UpdateDeviceStatus(ctx, evt.SessionId, status, ReadyForStatus(status))
		if err != nil {
			zap.L().Warn("ingest: status transition skipped",
				zap.String("session_id", evt.SessionId),
				zap.String("status", string(status)), zap.Error(err))
		} else {
			zap.L().Info("ingest: device status updated",
				zap.String("session_id", evt.SessionId), zap.String("status", string(status)))
		}
		return
	}

	switch evt.DataType {
	case "message", "media":
		p.ingestMessage(ctx, evt)
	case "contact", "contacts":
		p.ingestContacts(ctx, evt)
	default:
		// recognized lifecycle chatter (device_linked, device_unlinked)
		zap.L().Info("ingest: observed event",
			zap.String("data_type", evt.DataType), zap.String("session_id", evt.SessionId))
	}
}

// ingestMessage resolves the owning device and persists one normalized
// message. A message with no resolvable device is dropped, not buffered.
func (p *Processor) ingestMessage(ctx context.Context, evt Event) {
	dev, err := p.store.GetDeviceBySessionId(ctx, evt.SessionId)
	if err != nil {
		zap.L().Warn("ingest: dropping message for unknown session",
			zap.String("session_id", evt.SessionId), zap.Error(err))
		return
	}
	msg := normalize.NormalizeMessage(dev.Key, evt.Data)
	if err := p.store.CreateMessage(ctx, msg); err != nil {
		zap.L().Warn("ingest: message persist failed",
			zap.String("session_id", evt.SessionId),
			zap.String("message_id", msg.MessageId), zap.Error(err))
		return
	}
	zap.L().Debug("ingest: message persisted",
		zap.String("device_key", dev.Key), zap.String("message_id", msg.MessageId))
}

func (p *Processor) ingestContacts(ctx context.Context, evt Event) {
	dev, err := p.store.GetDeviceBySessionId(ctx, evt.SessionId)
	if err != nil {
		zap.L().Warn("ingest: dropping contacts for unknown session",
			zap.String("session_id", evt.SessionId), zap.Error(err))
		return
	}
	collection, ok := normalize.ExtractContactCollection(evt.Data)
	if !ok {
		zap.L().Debug("ingest: no contact collection in event",
			zap.String("session_id", evt.SessionId))
		return
	}
	p.syncContacts(ctx, dev.Key, collection)
}

// SubmitContactSync schedules a bulk contact upsert on the worker pool. Used
// by the relay gateway's get-contacts side effect so response shaping never
// waits on persistence.
func (p *Processor) SubmitContactSync(deviceKey string, collection []map[string]interface{}) {
	err := p.pool.Submit(func() {
		p.syncContacts(context.Background(), deviceKey, collection)
	})
	if err != nil {
		zap.L().Warn("ingest: contact sync submit failed",
			zap.String("device_key", deviceKey), zap.Error(err))
	}
}

func (p *Processor) syncContacts(ctx context.Context, deviceKey string, collection []map[string]interface{}) {
	var saved, skipped int
	for _, raw := range collection {
		contact, ok := normalize.NormalizeContact(deviceKey, raw)
		if !ok {
			skipped++
			zap.L().Debug("ingest: contact skipped, not an individual user",
				zap.String("device_key", deviceKey),
				zap.String("contact_id", normalize.ResolveContactId(raw)))
			continue
		}
		if err := p.store.UpsertContact(ctx, contact); err != nil {
			zap.L().Warn("ingest: contact upsert failed",
				zap.String("contact_id", contact.ContactId), zap.Error(err))
			continue
		}
		saved++
	}
	zap.L().Info("ingest: contact sync finished",
		zap.String("device_key", deviceKey),
		zap.Int("saved", saved), zap.Int("skipped", skipped))
}
