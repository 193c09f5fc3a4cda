package sim

import "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"

// FailInit makes every Init return f until cleared with nil.
func (e *Engine) FailInit(f *engine.Fault) { e.faults.init = f }

// FailConfig makes every SetConfigValue return f until cleared with nil.
func (e *Engine) FailConfig(f *engine.Fault) { e.faults.config = f }

// FailRun makes every Run return f until cleared with nil.
func (e *Engine) FailRun(f *engine.Fault) { e.faults.run = f }

// FailRelease makes Release return f after releasing.
func (e *Engine) FailRelease(f *engine.Fault) { e.faults.release = f }

// FailCreate makes the Create call of the named module return f. Names are
// the Name* constants.
func (e *Engine) FailCreate(name string, f *engine.Fault) {
	if f == nil {
		delete(e.faults.create, name)
		return
	}
	e.faults.create[name] = f
}

// FailNextWaits queues faults returned by the next WaitUpdate calls, one
// per call.
func (e *Engine) FailNextWaits(faults ...*engine.Fault) {
	e.faults.wait = append(e.faults.wait, faults...)
}

// RevokeLicense(true) makes every following WaitUpdate fail with a license
// fault; false restores the license.
func (e *Engine) RevokeLicense(revoked bool) { e.faults.license = revoked }
