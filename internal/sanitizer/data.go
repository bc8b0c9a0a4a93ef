package sanitizer

// CleanStats reports how many nodes a cleaning pass removed.
type CleanStats struct {
	RemovedElements int
	RemovedComments int
}
