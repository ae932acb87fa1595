package correlation

// Source records where the Middleware got a request's ID from.
type Source string

const (
	SourceHeader    Source = "header"
	SourceGenerated Source = "generated"
)

// Outcome records what the Transport did for one outgoing request.
type Outcome string

const (
	// OutcomeForwarded means the ID was attached to the request.
	OutcomeForwarded Outcome = "forwarded"
	// OutcomeSkippedPresent means the request already carried the header.
	OutcomeSkippedPresent Outcome = "skipped_present"
	// OutcomeSkippedEmpty means there was no ID to forward.
	OutcomeSkippedEmpty Outcome = "skipped_empty"
)

// Observer is notified of inbound resolutions and outbound forwarding
// decisions, for metrics. Implementations must be safe for concurrent use.
type Observer interface {
	InboundResolved(Source)
	OutboundForwarded(Outcome)
}

type nopObserver struct{}

func (nopObserver) InboundResolved(Source)    {}
func (nopObserver) OutboundForwarded(Outcome) {}
