// Package mcp exposes the project navigation engine as a Model Context
// Protocol server over stdio, so editor agents can jump between local
// projects the same way the goto command does.
//
// Tools:
//   - resolve_project {query}: resolve a query to one project; records the visit
//   - list_projects {query?, limit?, sort?}: ranked matches for a query, or
//     every project ordered by recent, frecency or name
//   - update_index {force?}: discover projects and embed new ones
//   - get_status {}: project counts, index coverage and embedder details
//
// Tool results are indented JSON text. Failures are returned as errors
// whose text is a JSON object:
//
//	{"code": -32003, "message": "no projects indexed, run update_index first"}
//
// Stdout carries protocol messages only; all logging goes to stderr.
package mcp
