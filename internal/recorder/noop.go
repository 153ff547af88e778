package recorder

import "context"

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(context.Context, Snapshot) error { return nil }
func (n *NoopRecorder) History(context.Context, HistoryQuery) ([]Snapshot, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
