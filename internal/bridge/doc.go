// Package bridge connects an embedding host shell to the console.
//
// The host opens a WebSocket at /shell and exchanges small JSON messages:
//
//	host -> console  {"type":"route","path":"/users","state":{...}}
//	console -> host  {"type":"ready"}
//	console -> host  {"type":"navigate","path":"/schedules"}
//	console -> host  {"type":"error","error":"..."}
//
// Route requests arrive on Changes for the console to apply; the console
// calls Ready once it has booted (the host can then drop its loading
// placeholder) and Navigated whenever the operator changes page. A host
// connecting after boot is sent the current state immediately.
//
// The same router serves /healthz and the Prometheus /metrics endpoint.
// With Advertise set the bridge is announced over mDNS so hosts can find
// it with package discovery.
package bridge
