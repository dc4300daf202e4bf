package middleware

import (
	"context"
	"sync"

	"villastay/internal/app/commands"
)

// BookingScoped marks commands whose effects must be serialized per booking.
// Concurrent front-desk edits to the same booking's charge list would
// otherwise interleave into lost updates; edits to different bookings stay
// fully parallel.
type BookingScoped interface {
	BookingKey() string
}

// BookingLock serializes BookingScoped commands by booking identity.
func BookingLock() CommandMiddleware {
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
			scoped, ok := cmd.(BookingScoped)
			if !ok || scoped.BookingKey() == "" {
				return nextFn(ctx, cmd)
			}
			l := acquire(scoped.BookingKey())
			l.Lock()
			defer l.Unlock()
			return nextFn(ctx, cmd)
		})
	}
}
