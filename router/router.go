// Package router maps conversational modes to registered handlers and
// dispatches turn envelopes to them. Routing never fails outward: unknown
// modes fail over to the fallback handler, and handler errors or panics are
// absorbed into a neutral response.
package router

import (
	"fmt"
	"time"

	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/logging"
)

// Decision records one routing choice for traceability.
type Decision struct {
	At       time.Time
	Mode     core.Mode
	Handler  string
	Reason   string
	Fallback bool
}

// Options configure a Router.
type Options struct {
	// Logger receives routing decisions. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Router holds the mode-to-handler registry for one session.
type Router struct {
	handlers map[core.Mode]registration
	fallback *registration
	log      []Decision
	logger   logging.Logger
}

type registration struct {
	name    string
	handler core.Handler
}

// New creates an empty Router.
func New(optFns ...func(o *Options)) *Router {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{
		handlers: map[core.Mode]registration{},
		logger:   opts.Logger,
	}
}

// Register binds a named handler to a mode, replacing any previous binding.
func (r *Router) Register(mode core.Mode, name string, h core.Handler) {
	r.handlers[mode] = registration{name: name, handler: h}
}

// SetFallback installs the handler used for unknown modes and absorbed
// failures.
func (r *Router) SetFallback(name string, h core.Handler) {
	r.fallback = &registration{name: name, handler: h}
}

// Log returns a copy of the routing decision log.
func (r *Router) Log() []Decision {
	out := make([]Decision, len(r.log))
	copy(out, r.log)
	return out
}

// Dispatch routes the request to the handler for its mode and returns the
// response envelope. The very first dispatch of a session is always routed
// to the onboarding handler regardless of mode. Dispatch always returns a
// well-formed envelope.
func (r *Router) Dispatch(req *core.HandlerRequest) core.Envelope {
	reg, reason, fellBack := r.selectHandler(req.Mode)

	if reg == nil {
		r.logger.Warn("routing failed, absorbing into neutral response", "mode", string(req.Mode), "error", core.ErrNoHandler)
		r.record(req.Mode, "", "no handler registered and no fallback installed", true)
		resp := neutralResponse(req, "No handler is available for this request.")
		resp.Metadata.Handler = ""
		return resp
	}

	r.record(req.Mode, reg.name, reason, fellBack)
	req.Envelope.Metadata.RoutingTrace = append(req.Envelope.Metadata.RoutingTrace, fmt.Sprintf("%s: %s", reg.name, reason))

	resp, err := r.call(reg, req)
	if err != nil {
		r.logger.Error("handler failed, absorbing into fallback response", "error", err, "mode", string(req.Mode), "handler", reg.name)
		resp = neutralResponse(req, "Something went wrong handling that; let's try again.")
	}
	resp.Metadata.Handler = reg.name
	resp.Metadata.Mode = req.Mode
	resp.Metadata.RoutingTrace = append([]string(nil), req.Envelope.Metadata.RoutingTrace...)
	return resp
}

// Resolve reports which handler Dispatch would pick for mode, without
// recording a decision. It returns core.ErrNoHandler when neither a mode
// handler nor a fallback is installed.
func (r *Router) Resolve(mode core.Mode) (string, error) {
	reg, _, _ := r.selectHandler(mode)
	if reg == nil {
		return "", core.ErrNoHandler
	}
	return reg.name, nil
}

// selectHandler applies the routing rules: first-turn onboarding, then the
// mode registry, then fallback.
func (r *Router) selectHandler(mode core.Mode) (reg *registration, reason string, fellBack bool) {
	if len(r.log) == 0 {
		if o, ok := r.handlers[core.ModeOnboarding]; ok {
			return &o, "first turn: onboarding forced", false
		}
	}
	if h, ok := r.handlers[mode]; ok {
		return &h, fmt.Sprintf("handler selected for %s mode", mode), false
	}
	if r.fallback != nil {
		return r.fallback, fmt.Sprintf("fallback: no handler for mode %q", mode), true
	}
	return nil, "", true
}

// call invokes the handler, converting panics into errors so a misbehaving
// handler cannot take the turn down.
func (r *Router) call(reg *registration, req *core.HandlerRequest) (resp core.Envelope, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler %s panicked: %v", reg.name, rec)
		}
	}()
	return reg.handler(req)
}

// record appends a routing decision and logs it.
func (r *Router) record(mode core.Mode, handler, reason string, fellBack bool) {
	r.log = append(r.log, Decision{
		At:       time.Now().UTC(),
		Mode:     mode,
		Handler:  handler,
		Reason:   reason,
		Fallback: fellBack,
	})
	r.logger.Debug("routing decision", "mode", string(mode), "handler", handler, "reason", reason, "fallback", fellBack)
}

// neutralResponse builds the absorbed-failure reply for a request.
func neutralResponse(req *core.HandlerRequest, text string) core.Envelope {
	return core.NewResponseEnvelope(req.Envelope, "response", fmt.Sprintf("[neutral | ] %s", text))
}
