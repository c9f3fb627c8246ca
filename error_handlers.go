package workqueue

// reportInternalError reports a failure inside the worker system.
//
// Internal errors are not tied to a routine: priority or pinning failures
// at start and wake-ups dropped by a saturated signal.
// If no handler is registered, the error is silently ignored.
func (s *WorkerSystem) reportInternalError(e error) {
	if s.opts.OnInternalError != nil {
		s.opts.OnInternalError(e)
	}
}

// reportCallbackPanic reports a value recovered from a routine.
//
// A panicking routine does not stop its worker.
func (s *WorkerSystem) reportCallbackPanic(c Class, r any) {
	if s.opts.OnCallbackPanic != nil {
		s.opts.OnCallbackPanic(c, r)
	}
}
