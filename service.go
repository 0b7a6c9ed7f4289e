package ews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rbaliyan/event/v3"
	"github.com/rbaliyan/event/v3/transport/noop"
	eventredis "github.com/rbaliyan/event/v3/transport/redis"
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/retry"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"
)

// Service states.
const (
	stateDisconnected int32 = 0
	stateConnecting   int32 = 1
	stateConnected    int32 = 2
)

// service implements Service.
type service struct {
	transport Transport
	logger    *slog.Logger
	opts      *options
	settings  property.Settings
	state     int32 // stateDisconnected, stateConnecting, or stateConnected
	plugins   *pluginRegistry
	otel      *otelInstrumentation
	reqSem    *semaphore.Weighted // Limits in-flight requests
	eventBus  *event.Bus
	events    *ServiceEvents
}

// NewService creates a service. WithTransport is required.
//
// Call Connect before use and Close when done.
func NewService(opts ...Option) (Service, error) {
	o := newOptions(opts...)

	if o.transport == nil {
		return nil, ErrTransportRequired
	}

	plugins := newPluginRegistry(o.logger)
	for _, p := range o.plugins {
		plugins.register(p)
	}

	otelInstr, err := newOtelInstrumentation(o)
	if err != nil {
		return nil, fmt.Errorf("init otel: %w", err)
	}

	return &service{
		transport: o.transport,
		logger:    o.logger,
		opts:      o,
		settings:  o.settings(),
		plugins:   plugins,
		otel:      otelInstr,
		reqSem:    semaphore.NewWeighted(int64(o.maxConcurrentRequests)),
	}, nil
}

// Events returns the per-service event instances.
// Returns nil before Connect.
func (s *service) Events() *ServiceEvents {
	return s.events
}

// Settings returns the connection settings.
func (s *service) Settings() property.Settings {
	return s.settings
}

// IsConnected returns true if the service is connected and ready.
func (s *service) IsConnected() bool {
	return atomic.LoadInt32(&s.state) == stateConnected
}

// checkAccess verifies the service is connected.
func (s *service) checkAccess() error {
	if atomic.LoadInt32(&s.state) != stateConnected {
		return ErrNotConnected
	}
	return nil
}

// Connect connects the snapshot store, the event bus and the plugins.
func (s *service) Connect(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.state, stateDisconnected, stateConnecting) {
		return ErrAlreadyConnected
	}

	success := false
	defer func() {
		if success {
			atomic.StoreInt32(&s.state, stateConnected)
		} else {
			atomic.StoreInt32(&s.state, stateDisconnected)
		}
	}()

	if s.opts.snapshots != nil {
		if err := s.opts.snapshots.Connect(ctx); err != nil {
			return fmt.Errorf("connect snapshot store: %w", err)
		}
	}

	if err := s.initEventBus(ctx); err != nil {
		s.closeSnapshots(ctx)
		return fmt.Errorf("init event bus: %w", err)
	}

	if err := s.plugins.initAll(ctx); err != nil {
		s.eventBus.Close(ctx)
		s.closeSnapshots(ctx)
		return fmt.Errorf("init plugins: %w", err)
	}

	success = true
	s.logger.Info("ews service connected", "version", s.opts.version, "format", s.opts.format)
	return nil
}

func (s *service) closeSnapshots(ctx context.Context) error {
	if s.opts.snapshots == nil {
		return nil
	}
	return s.opts.snapshots.Close(ctx)
}

var busCounter int64

// initEventBus creates the service's own bus and registers its events.
func (s *service) initEventBus(ctx context.Context) error {
	serviceName := s.opts.serviceName
	if serviceName == "" {
		serviceName = "ews"
	}
	// Each bus needs a unique name, so append a counter suffix
	busName := fmt.Sprintf("%s-%d", serviceName, atomic.AddInt64(&busCounter, 1))

	var bus *event.Bus
	var err error

	switch {
	case s.opts.eventTransport != nil:
		s.logger.Info("initializing event bus with custom transport")
		bus, err = event.NewBus(busName, event.WithTransport(s.opts.eventTransport))
	case s.opts.redisClient != nil:
		s.logger.Info("initializing event bus with Redis transport")
		t, transportErr := eventredis.New(s.opts.redisClient)
		if transportErr != nil {
			return fmt.Errorf("create redis transport: %w", transportErr)
		}
		bus, err = event.NewBus(busName, event.WithTransport(t))
	default:
		s.logger.Debug("initializing event bus with noop transport")
		bus, err = event.NewBus(busName, event.WithTransport(noop.New()))
	}

	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	s.eventBus = bus

	s.events = newServiceEvents(busName)
	if err := registerServiceEvents(ctx, bus, s.events); err != nil {
		bus.Close(ctx)
		return fmt.Errorf("register service events: %w", err)
	}
	return nil
}

// Close waits for in-flight requests, then closes plugins, the event bus
// and the snapshot store.
func (s *service) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.state, stateConnected, stateDisconnected) {
		return nil
	}

	var errs []error

	// No new request can start once the state is disconnected. Acquiring
	// every slot waits for the running ones.
	s.logger.Info("waiting for in-flight requests to complete...", "timeout", s.opts.shutdownTimeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, s.opts.shutdownTimeout)
	defer shutdownCancel()
	if err := s.reqSem.Acquire(shutdownCtx, int64(s.opts.maxConcurrentRequests)); err != nil {
		s.logger.Warn("timeout waiting for in-flight requests, proceeding with shutdown",
			"error", err)
		errs = append(errs, fmt.Errorf("graceful shutdown timeout: %w", err))
	} else {
		s.reqSem.Release(int64(s.opts.maxConcurrentRequests))
		s.logger.Info("all in-flight requests completed")
	}

	if err := s.plugins.closeAll(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close plugins: %w", err))
	}

	// The noop bus holds no resources.
	if s.eventBus != nil && (s.opts.eventTransport != nil || s.opts.redisClient != nil) {
		if err := s.eventBus.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}

	if err := s.closeSnapshots(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close snapshot store: %w", err))
	}

	return errors.Join(errs...)
}

// call sends one operation document and returns the response document.
// Transient failures are retried with the configured policy.
func (s *service) call(ctx context.Context, op string, body []byte) ([]byte, error) {
	if err := s.checkAccess(); err != nil {
		return nil, err
	}
	if err := s.reqSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.reqSem.Release(1)

	req := &Request{
		Operation: op,
		Version:   s.opts.version,
		Format:    s.opts.format,
		RequestID: uuid.NewString(),
		Body:      body,
	}

	ctx, end := s.otel.startSpan(ctx, "ews."+op,
		attribute.String("ews.operation", op),
		attribute.String("ews.request_id", req.RequestID),
	)
	start := time.Now()
	resp, err := retry.DoWithResult(ctx, s.opts.retry, func(ctx context.Context) (*Response, error) {
		resp, err := s.transport.RoundTrip(ctx, req)
		if err != nil || resp == nil {
			return resp, err
		}
		if err := throttled(op, req.Format, resp.Body); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err == nil && (resp == nil || len(resp.Body) == 0) {
		err = fmt.Errorf("%w: empty %s response", ErrUnexpectedResponse, op)
	}
	s.otel.recordRequest(ctx, time.Since(start), op, err)
	end(err)
	if err != nil {
		s.logger.Debug("request failed", "operation", op, "request_id", req.RequestID, "error", err)
		return nil, err
	}
	return resp.Body, nil
}

// publishChange publishes an ObjectChangedEvent for o.
func (s *service) publishChange(ctx context.Context, o *object, id *ID, change ChangeType) error {
	if s.events == nil || id == nil {
		return nil
	}
	evt := ObjectChangedEvent{
		ID:        id.UniqueID(),
		ChangeKey: id.ChangeKey(),
		Kind:      o.kind.Name(),
		Change:    change,
		At:        time.Now().UTC(),
	}
	if err := s.events.ObjectChanged.Publish(ctx, evt); err != nil {
		if s.opts.eventErrorsFatal {
			return &EventPublishError{Event: EventNameObjectChanged, ID: evt.ID, Err: err}
		}
		s.opts.safeEventPublishFailure(EventNameObjectChanged, err)
	}
	return nil
}

// --- Object factories ---

func (s *service) NewMessage() *EmailMessage {
	return wrap(newObject(s, KindMessage)).(*EmailMessage)
}

func (s *service) NewPostItem() *PostItem {
	return wrap(newObject(s, KindPostItem)).(*PostItem)
}

func (s *service) NewAppointment() *Appointment {
	return wrap(newObject(s, KindCalendarItem)).(*Appointment)
}

func (s *service) NewContact() *Contact {
	return wrap(newObject(s, KindContact)).(*Contact)
}

func (s *service) NewTask() *Task {
	return wrap(newObject(s, KindTask)).(*Task)
}

func (s *service) NewFolder(kind *Kind) (*Folder, error) {
	if kind == nil || !kind.IsFolder() {
		return nil, fmt.Errorf("%w: %v is not a folder kind", ErrKindMismatch, kind)
	}
	return wrap(newObject(s, kind)).(*Folder), nil
}

// --- Binding ---

func (s *service) BindItem(ctx context.Context, id *ID, ps *property.PropertySet) (Object, error) {
	if id == nil || id.UniqueID() == "" {
		return nil, ErrInvalidID
	}
	o, err := s.get(ctx, id, nil, ps)
	if err != nil {
		return nil, err
	}
	if o.kind.IsFolder() {
		return nil, fmt.Errorf("%w: %s is a folder", ErrKindMismatch, id)
	}
	return wrap(o), nil
}

func (s *service) BindMessage(ctx context.Context, id *ID, ps *property.PropertySet) (*EmailMessage, error) {
	obj, err := s.BindItem(ctx, id, ps)
	if err != nil {
		return nil, err
	}
	switch v := obj.(type) {
	case *EmailMessage:
		return v, nil
	case *MeetingRequest:
		return &v.EmailMessage, nil
	case *MeetingResponse:
		return &v.EmailMessage, nil
	case *MeetingCancellation:
		return &v.EmailMessage, nil
	}
	return nil, kindMismatch(id, obj.Kind(), KindMessage)
}

func (s *service) BindAppointment(ctx context.Context, id *ID, ps *property.PropertySet) (*Appointment, error) {
	return bindAs[*Appointment](ctx, s, id, ps, KindCalendarItem)
}

func (s *service) BindContact(ctx context.Context, id *ID, ps *property.PropertySet) (*Contact, error) {
	return bindAs[*Contact](ctx, s, id, ps, KindContact)
}

func (s *service) BindTask(ctx context.Context, id *ID, ps *property.PropertySet) (*Task, error) {
	return bindAs[*Task](ctx, s, id, ps, KindTask)
}

func bindAs[T Object](ctx context.Context, s *service, id *ID, ps *property.PropertySet, want *Kind) (T, error) {
	var zero T
	obj, err := s.BindItem(ctx, id, ps)
	if err != nil {
		return zero, err
	}
	v, ok := obj.(T)
	if !ok {
		return zero, kindMismatch(id, obj.Kind(), want)
	}
	return v, nil
}

func kindMismatch(id *ID, got, want *Kind) error {
	return fmt.Errorf("%w: %s is a %s, not a %s", ErrKindMismatch, id, got, want)
}

// BindFolder binds a folder by id or well-known name.
func (s *service) BindFolder(ctx context.Context, folder FolderRef, ps *property.PropertySet) (*Folder, error) {
	if folder.ID == "" && folder.WellKnown == "" {
		return nil, ErrInvalidID
	}
	o, err := s.get(ctx, folder, nil, ps)
	if err != nil {
		return nil, err
	}
	f, ok := wrap(o).(*Folder)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a folder", ErrKindMismatch, folder)
	}
	return f, nil
}
