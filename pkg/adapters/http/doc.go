// Package http serves runs of a flow over a small JSON API.
//
//	GET    /health
//	GET    /graph                   flow document
//	GET    /graph/mermaid           Mermaid diagram, ?session=<id> adds the run overlay
//	GET    /metrics                 when a metrics handler is configured
//	GET    /sessions
//	POST   /sessions                {"id"?, "start"?}
//	GET    /sessions/{id}
//	DELETE /sessions/{id}
//	POST   /sessions/{id}/toggle    {"choice_id"}
//	POST   /sessions/{id}/advance
//	POST   /sessions/{id}/back
//	POST   /sessions/{id}/restart
//	GET    /sessions/{id}/events    server-sent state diffs
//
// Traversal failures caused by the user's selections answer 422 and carry
// the untouched run; failures caused by a malformed flow answer 409.
package http
