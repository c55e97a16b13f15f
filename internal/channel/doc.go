// Package channel defines the Paradex WebSocket channel namespace.
//
// Each channel family is a template string with zero or more {name}
// placeholders (e.g. "fills.{market}"). Resolve substitutes caller
// parameters into the template, producing the exact wire string used
// as the subscription routing key.
package channel
