package health

import "context"

// DBPinger is the document store as seen by the database probe.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EventCounter reports how many event configurations are loaded.
type EventCounter interface {
	Count() int
}
