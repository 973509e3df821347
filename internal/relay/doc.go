// Package relay accepts log events over HTTP and forwards them to the
// configured notifiers.
//
// A submission is a POST to "/" with a JSON object body. Accepted submissions
// get 204 and are dispatched on a background goroutine; the response never
// waits for, or reflects, the outbound delivery. Every rejection (wrong
// method, unknown route, malformed body) gets the same 418 answer, with the
// reason reported through the notification channel and the local log.
package relay
