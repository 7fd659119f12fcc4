// Package sink provides a simple fragment handler suitable for wiring a
// subscriber.Subscriber's Poll loop to an application: it records
// delivered fragments in order and optionally forces ActionAbort for a
// configured number of upcoming fragments, which exercises the
// Subscriber's redelivery behavior in tests and demos.
package sink

import "github.com/i-melnichenko/clustersub/internal/subscriber"

// Delivery is one fragment as recorded by Ordered, with the header the
// Subscriber attached.
type Delivery struct {
	Body   []byte
	Header subscriber.Header
}

// Ordered accumulates delivered fragments in the order they were handed
// to it. It is not safe for concurrent use — the same single-goroutine
// assumption as the Subscriber it is normally wired to.
type Ordered struct {
	deliveries []Delivery
	abortNext  int
}

// NewOrdered returns an empty Ordered sink.
func NewOrdered() *Ordered {
	return &Ordered{}
}

// AbortNext configures the next n calls to Handle to return ActionAbort
// without recording the fragment, simulating a downstream consumer that
// temporarily cannot keep up.
func (o *Ordered) AbortNext(n int) {
	o.abortNext = n
}

// Handle implements subscriber.FragmentHandler.
func (o *Ordered) Handle(buf []byte, header subscriber.Header) subscriber.Action {
	if o.abortNext > 0 {
		o.abortNext--
		return subscriber.ActionAbort
	}
	body := make([]byte, len(buf))
	copy(body, buf)
	o.deliveries = append(o.deliveries, Delivery{Body: body, Header: header})
	return subscriber.ActionContinue
}

// Deliveries returns every fragment recorded so far, in delivery order.
func (o *Ordered) Deliveries() []Delivery {
	return o.deliveries
}

// Len returns the number of fragments recorded so far.
func (o *Ordered) Len() int {
	return len(o.deliveries)
}
