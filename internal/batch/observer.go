package batch

// Observer receives settled-item notifications. Multiple observers can be
// attached to one run with Observe, so a progress bar and a logger compose
// without the scheduler knowing about either.
type Observer[R any] interface {
	TaskSucceeded(Progress[R])
	TaskFailed(Failure)
}

// Observe fans the run's progress and error hooks out to obs, preserving
// any callbacks already set on cfg. Observers are invoked in registration
// order, in real completion order across items.
func Observe[R any](cfg Config[R], obs ...Observer[R]) Config[R] {
	prevProgress := cfg.OnProgress
	prevError := cfg.OnError
	cfg.OnProgress = func(p Progress[R]) {
		if prevProgress != nil {
			prevProgress(p)
		}
		for _, o := range obs {
			o.TaskSucceeded(p)
		}
	}
	cfg.OnError = func(f Failure) {
		if prevError != nil {
			prevError(f)
		}
		for _, o := range obs {
			o.TaskFailed(f)
		}
	}
	return cfg
}
