// Package schema declares the typed fields a UserState may hold.
//
// A Schema maps field names to one of the built-in types (string, bool, int).
// Each type knows its zero value, which is what an unset field reads as when no
// explicit default was declared.
//
//	s := schema.Schema{
//	    "isPrivate": schema.Bool(),
//	    "tabs":      schema.Int(),
//	}
//
//	// JSON numbers come back as ints.
//	values, err := schema.Validate(s, map[string]any{"tabs": 2.0})
//
// Type names, as written in a topology file, are parsed with ParseType.
package schema
