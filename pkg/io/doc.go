// Package io reads and writes signal graphs as JSON or YAML.
//
// Both formats carry the same document:
//
//	{
//	  "nodes": [
//	    {"id": "1", "name": "speakers", "roles": ["output"], "inputs": ["2", "3"], "outputs": []},
//	    {"id": "2", "roles": ["generator"], "inputs": [], "outputs": ["1"]}
//	  ],
//	  "edges": [
//	    {"roles": ["edge"], "source": "2", "destination": "1"}
//	  ]
//	}
//
// Edge roles may be omitted and default to ["edge"]; missing port lists
// decode as empty. Readers run chunk.Validate (lenient) and reject graphs
// with dangling edges, duplicate or empty ids and nodes without roles.
//
// Use [Import] and [Export] for files (the format follows the extension) or
// [Read] and [Write] with an explicit [Format] for streams.
package io
