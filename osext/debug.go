package osext

// TracerPID returns the pid of the process tracing the current one,
// such as an attached debugger. It is zero when nothing is attached
// or the platform cannot tell.
func TracerPID() (int, error) {
	return tracerPID()
}
