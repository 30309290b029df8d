package youmiya

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/a-peyrard/youmiya/fieldpath"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Async is the handle returned for an async provider. The loader runs on first Await, concurrent
// callers share the same load, a successful result is memoized and a failed load is retried on the
// next Await.
type Async struct {
	container *Container
	token     Token
	loader    AsyncLoader
	ctx       ResolutionContext

	group singleflight.Group

	mu     sync.Mutex
	loaded bool
	value  any
}

func newAsync(c *Container, token Token, provider AsyncProvider, ctx ResolutionContext) *Async {
	return &Async{
		container: c,
		token:     token,
		loader:    provider.Loader,
		ctx:       ctx,
	}
}

// Await loads and resolves the target.
func (a *Async) Await(ctx context.Context) (any, error) {
	if value, loaded := a.memo(); loaded {
		return value, nil
	}

	result := a.group.DoChan("load", func() (any, error) {
		if value, loaded := a.memo(); loaded {
			return value, nil
		}
		// the load is shared, a caller giving up must not cancel it for the others
		value, err := a.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		a.loaded = true
		a.value = value
		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		return res.Val, res.Err
	}
}

func (a *Async) memo() (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value, a.loaded
}

func (a *Async) load(ctx context.Context) (any, error) {
	class, err := a.loader(ctx, a.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s:\n\t%w", TokenString(a.token), err)
	}
	if class == nil {
		return nil, fmt.Errorf("loader of %s returned no class", TokenString(a.token))
	}

	loadCtx := a.ctx
	loadCtx.RootToken = class
	loadCtx.SourceToken = a.token
	loadCtx.Lazy = false
	loadCtx.Multiple = false
	loadCtx.Optional = false
	loadCtx.Async = false
	loadCtx.chain = chainSeq.Add(1)

	value, err := a.container.resolveToken(class, loadCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve loaded %s:\n\t%w", class, err)
	}
	if value, err = a.container.decorate(a.token, value, loadCtx); err != nil {
		return nil, err
	}
	a.container.logger.Debug().
		Str("container", a.container.identifier).
		Str("token", TokenString(a.token)).
		Msg("async provider loaded")
	return value, nil
}

// Property awaits the target, then reads a dotted field path or a method value from it.
func (a *Async) Property(ctx context.Context, path string) (any, error) {
	value, err := a.Await(ctx)
	if err != nil {
		return nil, err
	}
	if method := reflect.ValueOf(value).MethodByName(path); method.IsValid() {
		return method.Interface(), nil
	}
	return fieldpath.Get(value, path)
}

func (a *Async) Token() Token {
	return a.token
}

// Loaded reports if a load completed successfully.
func (a *Async) Loaded() bool {
	_, loaded := a.memo()
	return loaded
}

func (a *Async) String() string {
	return fmt.Sprintf("Async(%s)", TokenString(a.token))
}

// AwaitAs awaits a and converts the result to T.
func AwaitAs[T any](ctx context.Context, a *Async) (T, error) {
	var zero T
	value, err := a.Await(ctx)
	if err != nil {
		return zero, err
	}
	return convert[T](value)
}

// AwaitAll loads the given handles concurrently, results keep the order of the handles.
func AwaitAll(ctx context.Context, handles ...*Async) ([]any, error) {
	results := make([]any, len(handles))
	g, gCtx := errgroup.WithContext(ctx)
	for i, handle := range handles {
		i, handle := i, handle
		g.Go(func() error {
			value, err := handle.Await(gCtx)
			if err != nil {
				return err
			}
			results[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
