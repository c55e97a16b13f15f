// Package stream implements the Paradex WebSocket streaming client.
//
// One Client multiplexes subscriptions to many server-pushed channels
// over a single connection. Subscriptions made before the transport is
// ready queue and drain on readiness; on transport failure a
// supervisor dials a replacement and replays every active
// subscription with its original id, so subscription identities
// survive reconnection without caller intervention.
//
// Known gap: the server is not required to acknowledge subscribe or
// unsubscribe requests, and the registry is optimistic: a request is
// considered live once sent. A server-side rejection (e.g. an invalid
// market) arrives as a frame without params and is logged as
// non-actionable; no reconciliation is attempted.
package stream
