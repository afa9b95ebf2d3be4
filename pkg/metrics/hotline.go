// Package metrics defines the optional Prometheus collaborator interfaces
// the Hotline server reports to. A nil HotlineMetrics disables collection
// with zero overhead.
package metrics

// HotlineMetrics provides observability for the Hotline server: session
// lifecycle, transaction dispatch, and broadcast fan-out.
type HotlineMetrics interface {
	// SetActiveSessions updates the current connection count.
	SetActiveSessions(count int32)

	// RecordTransaction records one dispatched transaction by kind and the
	// wire error code its reply carried (0 for success).
	RecordTransaction(kind uint16, errorCode uint32)

	// RecordHandshakeFailure counts a rejected or malformed handshake.
	RecordHandshakeFailure()

	// RecordEventPublished counts one published broadcast.Event, by event
	// kind, whether or not any recipient accepted it.
	RecordEventPublished(kind string)

	// RecordEventDropped counts one broadcast.Event dropped for a stuck
	// recipient, by event kind.
	RecordEventDropped(kind string)
}
