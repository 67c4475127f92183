// Package todo owns the task collection and everything derived from it.
//
// A Store holds the ordered collection (newest first), the single optional
// edit session, and a persistence hook that runs after every change:
//
//	store, err := todo.Open(todo.NewKVPersister(backend, "my-tasks"))
//	store.Add("Buy milk")
//	store.Toggle(id)
//	view := store.FilteredView(todo.FilterActive, "milk")
//
// # Record Format
//
// The persisted record is the collection encoded as a list of objects with
// the fields id, title and completed. JSON is the default encoding:
//
//	[
//	  {
//	    "id": 1718000000000,
//	    "title": "Walk dog",
//	    "completed": false
//	  }
//	]
//
// YAML (a bare sequence) and TOML (a [[tasks]] array of tables) are also
// supported. Records are checked against an embedded JSON Schema on load.
//
// # Load Failures
//
// A record that cannot be decoded or fails validation is never propagated
// as a crash. Open starts with an empty collection, copies the raw bytes to
// "<key>.corrupt" in the same backend, and reports the problem through
// Store.LoadIssue.
package todo
