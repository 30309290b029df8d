package youmiya

import (
	"sync"

	"github.com/a-peyrard/youmiya/slices"
)

type (
	// patchable payloads merge the non-zero fields of a patch over themselves.
	patchable[P any] interface {
		merge(patch P) P
	}

	// Event identifies an interception point. Only handlers of "before" events can patch the payload.
	Event[P patchable[P]] struct {
		name   string
		before bool
	}

	// Handler receives the current payload and can return a partial patch, nil leaves it unmodified.
	Handler[P patchable[P]] func(payload P) *P

	RegisterPayload struct {
		Container *Container
		Token     Token
		Provider  Provider
		Options   *RegisterOptions
	}

	AfterRegisterPayload struct {
		RegisterPayload
		Registration *Registration
		Unregister   Unregister
	}

	ResolvePayload struct {
		Container *Container
		Token     Token
		Context   *ResolutionContext
	}

	AfterResolvePayload struct {
		ResolvePayload
		Result any
		Err    error
	}

	// Subscription is returned by On, it can be removed through Unsubscribe or InterceptorRegistry.Off.
	Subscription struct {
		registry *InterceptorRegistry
		event    string
		handler  any
	}

	InterceptorRegistry struct {
		mu       sync.RWMutex
		handlers map[string][]*Subscription
	}
)

var (
	BeforeRegister = Event[RegisterPayload]{name: "before:register", before: true}
	AfterRegister  = Event[AfterRegisterPayload]{name: "after:register"}
	BeforeResolve  = Event[ResolvePayload]{name: "before:resolve", before: true}
	AfterResolve   = Event[AfterResolvePayload]{name: "after:resolve"}
)

func NewInterceptorRegistry() *InterceptorRegistry {
	return &InterceptorRegistry{
		handlers: make(map[string][]*Subscription),
	}
}

func (e Event[P]) String() string {
	return e.name
}

// On appends a handler for event.
func On[P patchable[P]](r *InterceptorRegistry, event Event[P], handler Handler[P]) *Subscription {
	sub := &Subscription{registry: r, event: event.name, handler: handler}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event.name] = append(r.handlers[event.name], sub)
	return sub
}

// Off removes a subscription, removing it twice is a no-op.
func (r *InterceptorRegistry) Off(sub *Subscription) {
	if sub == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[sub.event] = slices.Filter(r.handlers[sub.event], func(s *Subscription) bool {
		return s != sub
	})
}

func (s *Subscription) Unsubscribe() {
	s.registry.Off(s)
}

// Len counts the handlers of an event.
func (r *InterceptorRegistry) Len(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[event])
}

// Dispatch calls the handlers of event in subscription order. Patches returned by handlers of "before"
// events are merged into the payload seen by the next handlers; modified reports if any was.
func Dispatch[P patchable[P]](r *InterceptorRegistry, event Event[P], payload P) (result P, modified bool) {
	r.mu.RLock()
	subs := append([]*Subscription(nil), r.handlers[event.name]...)
	r.mu.RUnlock()

	result = payload
	for _, sub := range subs {
		patch := sub.handler.(Handler[P])(result)
		if event.before && patch != nil {
			modified = true
			result = result.merge(*patch)
		}
	}
	return result, modified
}

func (p RegisterPayload) merge(patch RegisterPayload) RegisterPayload {
	if patch.Token != nil {
		p.Token = patch.Token
	}
	if patch.Provider != nil {
		p.Provider = patch.Provider
	}
	if patch.Options != nil {
		p.Options = patch.Options
	}
	return p
}

func (p AfterRegisterPayload) merge(AfterRegisterPayload) AfterRegisterPayload {
	return p
}

func (p ResolvePayload) merge(patch ResolvePayload) ResolvePayload {
	if patch.Token != nil {
		p.Token = patch.Token
	}
	if patch.Context != nil {
		p.Context = patch.Context
	}
	return p
}

func (p AfterResolvePayload) merge(AfterResolvePayload) AfterResolvePayload {
	return p
}
