package ews

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rbaliyan/ews/wire"
	"go.opentelemetry.io/otel/attribute"
)

// EventType is a kind of server notification.
type EventType string

// Event types. The values are the notification element names.
const (
	EventCreated         EventType = "CreatedEvent"
	EventModified        EventType = "ModifiedEvent"
	EventDeleted         EventType = "DeletedEvent"
	EventMoved           EventType = "MovedEvent"
	EventCopied          EventType = "CopiedEvent"
	EventNewMail         EventType = "NewMailEvent"
	EventFreeBusyChanged EventType = "FreeBusyChangedEvent"
)

// AllEventTypes are subscribed when Subscribe is given no types.
// FreeBusyChanged needs Exchange2010SP1 and is requested only there.
var AllEventTypes = []EventType{
	EventCreated, EventModified, EventDeleted, EventMoved, EventCopied, EventNewMail, EventFreeBusyChanged,
}

const statusEvent = "StatusEvent"

func isEventType(name string) bool {
	for _, t := range AllEventTypes {
		if string(t) == name {
			return true
		}
	}
	return false
}

// Subscription is a pull subscription. GetEvents advances its watermark;
// a Subscription must not be used by two GetEvents calls at once.
type Subscription struct {
	ID        string
	Watermark string
	Folders   []FolderRef
	Types     []EventType
}

// GetEventsResult is one batch of pulled events.
type GetEventsResult struct {
	SubscriptionID    string
	PreviousWatermark string
	// MoreEvents reports that the server holds further events; call
	// GetEvents again to pull them.
	MoreEvents bool
	Events     []NotificationEvent
}

// Subscribe creates a pull subscription on folders.
func (s *service) Subscribe(ctx context.Context, folders []FolderRef, types ...EventType) (_ *Subscription, err error) {
	if len(folders) == 0 {
		return nil, fmt.Errorf("%w: no folders to subscribe to", ErrInvalidID)
	}
	if len(types) == 0 {
		for _, t := range AllEventTypes {
			if t == EventFreeBusyChanged && s.opts.version < wire.Exchange2010SP1 {
				continue
			}
			types = append(types, t)
		}
	}
	for _, t := range types {
		if !isEventType(string(t)) {
			return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidObject, t)
		}
	}

	ctx, end := s.otel.startSpan(ctx, "ews.subscribe", attribute.Int("ews.folder_count", len(folders)))
	start := time.Now()
	defer func() {
		s.otel.recordSubscribe(ctx, time.Since(start), len(folders), err)
		end(err)
	}()

	timeout := strconv.Itoa(int(s.opts.subscriptionTimeout / time.Minute))
	body, err := s.encode(func(w *wire.Writer) {
		w.WriteStartElement(wire.NamespaceMessages, "PullSubscriptionRequest")
		w.WriteStartElement(wire.NamespaceTypes, "FolderIds")
		for _, f := range folders {
			f.writeXML(w)
		}
		w.WriteEndElement()
		w.WriteStartElement(wire.NamespaceTypes, "EventTypes")
		for _, t := range types {
			w.WriteElementValue(wire.NamespaceTypes, "EventType", string(t))
		}
		w.WriteEndElement()
		w.WriteElementValue(wire.NamespaceTypes, "Timeout", timeout)
		w.WriteEndElement()
	}, func(req wire.Object) error {
		ids := make([]any, len(folders))
		for i, f := range folders {
			ids[i] = f.json()
		}
		names := make([]any, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		pull := wire.NewObject("PullSubscriptionRequest")
		pull["FolderIds"] = ids
		pull["EventTypes"] = names
		pull["Timeout"] = timeout
		req["SubscriptionRequest"] = pull
		return nil
	}, OpSubscribe)
	if err != nil {
		return nil, err
	}
	resp, err := s.call(ctx, OpSubscribe, body)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{Folders: folders, Types: types}
	if s.isJSON() {
		msgs, status, err := readResponseJSON(resp)
		if err != nil {
			return nil, err
		}
		if len(msgs) == 0 {
			return nil, fmt.Errorf("%w: no response message for %s", ErrUnexpectedResponse, OpSubscribe)
		}
		if err := status[0].err(OpSubscribe); err != nil {
			return nil, err
		}
		sub.ID, _ = msgs[0].GetString("SubscriptionId")
		sub.Watermark, _ = msgs[0].GetString("Watermark")
	} else {
		status, err := readResponseXML(resp, func(_ int, r *wire.Reader) error {
			var err error
			switch r.LocalName() {
			case "SubscriptionId":
				sub.ID, err = r.ReadElementValue()
			case "Watermark":
				sub.Watermark, err = r.ReadElementValue()
			default:
				err = r.SkipCurrentElement()
			}
			return err
		})
		if err != nil {
			return nil, err
		}
		errs := make([]error, len(status))
		for i, m := range status {
			errs[i] = m.err(OpSubscribe)
		}
		if err := single(OpSubscribe, errs); err != nil {
			return nil, err
		}
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%w: %s returned no subscription id", ErrUnexpectedResponse, OpSubscribe)
	}

	s.logger.Info("subscribed", "subscription", sub.ID, "folders", len(folders), "types", len(types))
	return sub, nil
}

// GetEvents pulls the events since sub.Watermark and publishes each on
// Events().Notification.
func (s *service) GetEvents(ctx context.Context, sub *Subscription) (_ *GetEventsResult, err error) {
	if sub == nil || sub.ID == "" {
		return nil, ErrSubscriptionNotFound
	}

	ctx, end := s.otel.startSpan(ctx, "ews.getevents", attribute.String("ews.subscription", sub.ID))
	start := time.Now()
	count := 0
	defer func() {
		s.otel.recordGetEvents(ctx, time.Since(start), count, err)
		end(err)
	}()

	body, err := s.encode(func(w *wire.Writer) {
		w.WriteElementValue(wire.NamespaceMessages, "SubscriptionId", sub.ID)
		w.WriteElementValue(wire.NamespaceMessages, "Watermark", sub.Watermark)
	}, func(req wire.Object) error {
		req["SubscriptionId"] = sub.ID
		req["Watermark"] = sub.Watermark
		return nil
	}, OpGetEvents)
	if err != nil {
		return nil, err
	}
	resp, err := s.call(ctx, OpGetEvents, body)
	if err != nil {
		return nil, err
	}

	result := &GetEventsResult{SubscriptionID: sub.ID}
	watermark := ""
	if s.isJSON() {
		watermark, err = s.readNotificationJSON(resp, result)
	} else {
		watermark, err = s.readNotificationXML(resp, result)
	}
	if err != nil {
		return nil, err
	}
	if watermark != "" {
		sub.Watermark = watermark
	}
	count = len(result.Events)

	for _, evt := range result.Events {
		if err := s.events.Notification.Publish(ctx, evt); err != nil {
			if s.opts.eventErrorsFatal {
				return result, &EventPublishError{Event: EventNameNotification, ID: sub.ID, Err: err}
			}
			s.opts.safeEventPublishFailure(EventNameNotification, err)
		}
	}
	return result, nil
}

// Unsubscribe ends a pull subscription.
func (s *service) Unsubscribe(ctx context.Context, sub *Subscription) error {
	if sub == nil || sub.ID == "" {
		return ErrSubscriptionNotFound
	}
	body, err := s.encode(func(w *wire.Writer) {
		w.WriteElementValue(wire.NamespaceMessages, "SubscriptionId", sub.ID)
	}, func(req wire.Object) error {
		req["SubscriptionId"] = sub.ID
		return nil
	}, OpUnsubscribe)
	if err != nil {
		return err
	}
	resp, err := s.call(ctx, OpUnsubscribe, body)
	if err != nil {
		return err
	}
	errs, err := s.readObjects(OpUnsubscribe, "", resp, nil)
	if err != nil {
		return err
	}
	if err := single(OpUnsubscribe, errs); err != nil {
		return err
	}
	s.logger.Info("unsubscribed", "subscription", sub.ID)
	return nil
}

// readNotificationXML fills result from a GetEvents response and returns
// the watermark of the last event.
func (s *service) readNotificationXML(body []byte, result *GetEventsResult) (string, error) {
	last := ""
	status, err := readResponseXML(body, func(_ int, r *wire.Reader) error {
		if r.LocalName() != "Notification" {
			return r.SkipCurrentElement()
		}
		return readChildrenNS(r, wire.NamespaceMessages, "Notification", func(name string) error {
			var err error
			switch {
			case name == "SubscriptionId":
				_, err = r.ReadElementValue()
			case name == "PreviousWatermark":
				result.PreviousWatermark, err = r.ReadElementValue()
			case name == "MoreEvents":
				var v string
				if v, err = r.ReadElementValue(); err == nil {
					result.MoreEvents, err = wire.ParseBool(v)
				}
			case name == statusEvent:
				var evt NotificationEvent
				if err = readEventXML(r, name, &evt); err == nil && evt.Watermark != "" {
					last = evt.Watermark
				}
			case isEventType(name):
				evt := NotificationEvent{SubscriptionID: result.SubscriptionID, Type: EventType(name)}
				if err = readEventXML(r, name, &evt); err == nil {
					result.Events = append(result.Events, evt)
					last = evt.Watermark
				}
			default:
				s.logger.Debug("skipping unknown notification element", "element", name)
				err = r.SkipCurrentElement()
			}
			return err
		})
	})
	if err != nil {
		return "", err
	}
	errs := make([]error, len(status))
	for i, m := range status {
		errs[i] = m.err(OpGetEvents)
	}
	if err := single(OpGetEvents, errs); err != nil {
		return "", err
	}
	return last, nil
}

// readChildrenNS is readChildren for a container in any namespace.
func readChildrenNS(r *wire.Reader, ns wire.Namespace, elem string, fn func(name string) error) error {
	for {
		if err := r.Read(); err != nil {
			return wire.Deserialize(elem, "", err)
		}
		if r.IsEndElement(ns, elem) {
			return nil
		}
		if !r.IsStart() {
			continue
		}
		if err := fn(r.LocalName()); err != nil {
			return err
		}
	}
}

func readEventXML(r *wire.Reader, elem string, evt *NotificationEvent) error {
	return readChildren(r, elem, func(name string) error {
		var err error
		switch name {
		case "Watermark":
			evt.Watermark, err = r.ReadElementValue()
		case "TimeStamp":
			var v string
			if v, err = r.ReadElementValue(); err == nil {
				evt.Timestamp, err = wire.ParseDateTime(v)
			}
		case "UnreadCount":
			var v string
			if v, err = r.ReadElementValue(); err == nil {
				var n int64
				n, err = wire.ParseInt(v)
				evt.UnreadCount = int(n)
			}
		default:
			dst := evt.idField(name)
			if dst == nil {
				return r.SkipCurrentElement()
			}
			*dst = r.Attr(wire.AttrID)
			err = r.SkipCurrentElement()
		}
		if err != nil {
			return wire.Deserialize(name, "", err)
		}
		return nil
	})
}

// idField returns the field an id element of an event is stored in.
func (e *NotificationEvent) idField(name string) *string {
	switch name {
	case wire.ElemItemID:
		return &e.ItemID
	case wire.ElemFolderID:
		e.IsFolder = true
		return &e.FolderID
	case wire.ElemParentFolderID:
		return &e.ParentFolderID
	case "OldItemId":
		return &e.OldItemID
	case "OldFolderId":
		return &e.OldFolderID
	case "OldParentFolderId":
		return &e.OldParentFolderID
	}
	return nil
}

func (s *service) readNotificationJSON(body []byte, result *GetEventsResult) (string, error) {
	msgs, status, err := readResponseJSON(body)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("%w: no response message for %s", ErrUnexpectedResponse, OpGetEvents)
	}
	if err := status[0].err(OpGetEvents); err != nil {
		return "", err
	}
	n, ok := msgs[0].GetObject("Notification")
	if !ok {
		return "", fmt.Errorf("%w: no Notification member", ErrUnexpectedResponse)
	}
	result.PreviousWatermark, _ = n.GetString("PreviousWatermark")
	if v, ok := n["MoreEvents"]; ok {
		if result.MoreEvents, err = wire.AsBool(v); err != nil {
			return "", wire.Deserialize("MoreEvents", "", err)
		}
	}

	last := ""
	events, _ := n.GetArray("Events")
	for _, raw := range events {
		o, err := wire.AsObject(raw)
		if err != nil {
			return "", wire.Deserialize("Events", "", err)
		}
		name := o.TypeName()
		wm, _ := o.GetString("Watermark")
		if name == statusEvent {
			if wm != "" {
				last = wm
			}
			continue
		}
		if !isEventType(name) {
			s.logger.Debug("skipping unknown notification event", "type", name)
			continue
		}
		evt := NotificationEvent{SubscriptionID: result.SubscriptionID, Type: EventType(name), Watermark: wm}
		if ts, ok := o.GetString("TimeStamp"); ok {
			if evt.Timestamp, err = wire.ParseDateTime(ts); err != nil {
				return "", wire.Deserialize("TimeStamp", ts, err)
			}
		}
		if v, ok := o["UnreadCount"]; ok {
			c, err := wire.AsInt(v)
			if err != nil {
				return "", wire.Deserialize("UnreadCount", "", err)
			}
			evt.UnreadCount = int(c)
		}
		for _, key := range []string{
			wire.ElemItemID, wire.ElemFolderID, wire.ElemParentFolderID,
			"OldItemId", "OldFolderId", "OldParentFolderId",
		} {
			id, ok := o.GetObject(key)
			if !ok {
				continue
			}
			*evt.idField(key), _ = id.GetString(wire.AttrID)
		}
		result.Events = append(result.Events, evt)
		last = wm
	}
	return last, nil
}
