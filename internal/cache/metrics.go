package cache

// Metrics receives one call per cache event. Implementations are
// write-only observers and must not influence caching decisions.
type Metrics interface {
	Hit(key string)
	Miss(key string)
	Expired(key string)
	Stored(key string)
	Evicted(key string)
}

// NoopMetrics discards every event.
type NoopMetrics struct{}

func (NoopMetrics) Hit(key string)     {}
func (NoopMetrics) Miss(key string)    {}
func (NoopMetrics) Expired(key string) {}
func (NoopMetrics) Stored(key string)  {}
func (NoopMetrics) Evicted(key string) {}

var _ Metrics = NoopMetrics{}
