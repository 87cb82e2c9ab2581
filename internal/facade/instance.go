package facade

import "sync"

var (
	instanceMu sync.Mutex
	instance   *Facade
)

// Instance returns the process-wide facade, constructing it on first
// access. Construction is guarded; the process owns exactly one live
// facade for its lifetime.
func Instance() *Facade {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = New()
	}
	return instance
}

// ResetInstance discards the process-wide facade so tests can isolate
// themselves. It does not close the previous instance; callers that
// initialized it call Close first.
func ResetInstance() {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = nil
}
