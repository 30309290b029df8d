package youmiya

import (
	"sync"

	"github.com/a-peyrard/youmiya/set"
	"github.com/a-peyrard/youmiya/slices"
)

type (
	resolutionSource struct {
		container   *Container
		rootToken   Token
		sourceToken Token
	}

	trackKey struct {
		chain uint64
		token Token
	}

	// Tracker records the tokens whose resolution is in progress in a container, per resolution chain:
	// concurrent resolutions of the same token never see each other as a cycle.
	Tracker struct {
		mu         sync.Mutex
		inProgress map[trackKey]resolutionSource
	}
)

func NewTracker() *Tracker {
	return &Tracker{
		inProgress: make(map[trackKey]resolutionSource),
	}
}

// Start marks token as in progress in the chain of ctx. If it already was, the existing mark is returned
// and started is false.
func (tracker *Tracker) Start(token Token, c *Container, ctx ResolutionContext) (existing resolutionSource, started bool) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	key := trackKey{chain: ctx.chain, token: token}
	if existing, found := tracker.inProgress[key]; found {
		return existing, false
	}
	tracker.inProgress[key] = resolutionSource{
		container:   c,
		rootToken:   ctx.RootToken,
		sourceToken: ctx.SourceToken,
	}
	return resolutionSource{}, true
}

func (tracker *Tracker) Complete(token Token, ctx ResolutionContext) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	delete(tracker.inProgress, trackKey{chain: ctx.chain, token: token})
}

// InProgress reports if token is being resolved by any chain.
func (tracker *Tracker) InProgress(token Token) bool {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	for key := range tracker.inProgress {
		if key.token == token {
			return true
		}
	}
	return false
}

func (tracker *Tracker) Clear() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.inProgress = make(map[trackKey]resolutionSource)
}

// CycleError builds the error for token requested again by the source token of ctx, walking the source
// links of the chain back until they are exhausted.
func (tracker *Tracker) CycleError(token Token, ctx ResolutionContext) *CircularDependencyError {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	chain := []Token{token}
	seen := set.New[Token]()
	for current := ctx.SourceToken; current != nil && seen.Add(current); {
		chain = append(chain, current)
		source, found := tracker.inProgress[trackKey{chain: ctx.chain, token: current}]
		if !found {
			break
		}
		current = source.sourceToken
	}

	return &CircularDependencyError{
		Token: token,
		Chain: slices.Reversed(chain),
	}
}
