package usecase

import "time"

const defaultStoreTimeout = 10 * time.Second

type options struct {
	now           func() time.Time
	storeTimeout  time.Duration
	transactional bool
}

// Option tweaks a use case at construction time.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithStoreTimeout bounds every individual store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.storeTimeout = d
		}
	}
}

// WithTransactional makes reconciliation run its writes in one transaction.
func WithTransactional(on bool) Option {
	return func(o *options) { o.transactional = on }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, storeTimeout: defaultStoreTimeout}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
