package ews

import (
	"context"
	"errors"
	"log/slog"
)

// Plugin defines the interface for service extensions.
// Plugins can hook into the object lifecycle to add custom behavior
// such as auditing, content checks or property defaults.
//
// For observing server-side changes, use GetEvents and the event system
// instead (Service.Events().Notification).
type Plugin interface {
	// Name returns the plugin identifier.
	Name() string
	// Init initializes the plugin. Called when service connects.
	Init(ctx context.Context) error
	// Close cleans up plugin resources. Called when service closes.
	Close(ctx context.Context) error
}

// SaveHook is called around creates and updates.
type SaveHook interface {
	Plugin
	// BeforeSave is called after validation and before the request is sent.
	// obj.IsNew() reports whether this is a create. Changes made to obj are
	// part of the request. Return an error to abort.
	BeforeSave(ctx context.Context, obj Object) error
	// AfterSave is called after the server accepted the change.
	// The change cannot be rolled back.
	AfterSave(ctx context.Context, obj Object) error
}

// LoadHook is called after an object was bound or loaded from the server.
type LoadHook interface {
	Plugin
	AfterLoad(ctx context.Context, obj Object) error
}

// pluginRegistry holds registered plugins.
type pluginRegistry struct {
	all    []Plugin
	save   []SaveHook
	load   []LoadHook
	logger *slog.Logger
}

// newPluginRegistry creates a new plugin registry.
func newPluginRegistry(logger *slog.Logger) *pluginRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &pluginRegistry{logger: logger}
}

// register adds a plugin to the registry.
func (r *pluginRegistry) register(p Plugin) {
	r.all = append(r.all, p)

	if h, ok := p.(SaveHook); ok {
		r.save = append(r.save, h)
	}
	if h, ok := p.(LoadHook); ok {
		r.load = append(r.load, h)
	}
}

// initAll initializes all plugins.
// On failure, already-initialized plugins are closed in reverse order.
func (r *pluginRegistry) initAll(ctx context.Context) error {
	for i, p := range r.all {
		if err := p.Init(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if closeErr := r.all[j].Close(ctx); closeErr != nil {
					r.logger.Error("failed to close plugin during init rollback",
						"plugin", r.all[j].Name(), "error", closeErr)
				}
			}
			return &PluginError{Plugin: p.Name(), Op: "init", Err: err}
		}
	}
	return nil
}

// closeAll closes all plugins in reverse order.
func (r *pluginRegistry) closeAll(ctx context.Context) error {
	var errs []error
	for i := len(r.all) - 1; i >= 0; i-- {
		if err := r.all[i].Close(ctx); err != nil {
			errs = append(errs, &PluginError{Plugin: r.all[i].Name(), Op: "close", Err: err})
		}
	}
	return errors.Join(errs...)
}

// PluginError represents an error from a plugin.
type PluginError struct {
	Plugin string
	Op     string
	Err    error
}

func (e *PluginError) Error() string {
	return "plugin " + e.Plugin + " " + e.Op + ": " + e.Err.Error()
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// Hook execution helpers

func (r *pluginRegistry) beforeSave(ctx context.Context, obj Object) error {
	for _, h := range r.save {
		if err := h.BeforeSave(ctx, obj); err != nil {
			return &PluginError{Plugin: h.Name(), Op: "BeforeSave", Err: err}
		}
	}
	return nil
}

func (r *pluginRegistry) afterSave(ctx context.Context, obj Object) error {
	for _, h := range r.save {
		if err := h.AfterSave(ctx, obj); err != nil {
			return &PluginError{Plugin: h.Name(), Op: "AfterSave", Err: err}
		}
	}
	return nil
}

func (r *pluginRegistry) afterLoad(ctx context.Context, obj Object) error {
	for _, h := range r.load {
		if err := h.AfterLoad(ctx, obj); err != nil {
			return &PluginError{Plugin: h.Name(), Op: "AfterLoad", Err: err}
		}
	}
	return nil
}
