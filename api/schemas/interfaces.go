// File: api/schemas/interfaces.go
package schemas

// ObjectRepository abstracts the store of named test objects and their
// locators. The healing engine uses it to persist healed locators when
// auto-update is enabled; tests supply fakes.
type ObjectRepository interface {
	// GetLocator returns the current locator for the named object, or
	// ErrObjectNotFound.
	GetLocator(objectName string) (Locator, error)

	// SetLocator replaces the locator for the named object. Returns
	// ErrObjectNotFound when the object does not exist.
	SetLocator(objectName string, locator Locator) error
}

// OutputSink receives runner output chunks as they arrive. Implementations
// must not block the supervisor's pump goroutines, and must copy the chunk
// if they keep it: the slice is reused after the call returns.
type OutputSink interface {
	Write(runID string, chunk []byte)
}
