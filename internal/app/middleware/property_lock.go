package middleware

import (
	"context"
	"sync"

	"villastay/internal/app/commands"
)

// PropertyScoped marks commands that must be serialized per property. Booking
// creation is the important case: the availability scan and the insert form a
// check-then-act window, and two concurrent requests for overlapping dates
// must not both observe the range as free.
type PropertyScoped interface {
	PropertyKey() string
}

// PropertyLock serializes PropertyScoped commands by property identity.
func PropertyLock() CommandMiddleware {
	var mu sync.Mutex
	locks := make(map[string]*sync.Mutex)

	acquire := func(key string) *sync.Mutex {
		mu.Lock()
		defer mu.Unlock()
		l, ok := locks[key]
		if !ok {
			l = &sync.Mutex{}
			locks[key] = l
		}
		return l
	}

	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			scoped, ok := cmd.(PropertyScoped)
			if !ok || scoped.PropertyKey() == "" {
				return nextFn(ctx, cmd)
			}
			l := acquire(scoped.PropertyKey())
			l.Lock()
			defer l.Unlock()
			return nextFn(ctx, cmd)
		})
	}
}
