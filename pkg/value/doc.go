// Package value provides the dynamic value model shared by the validation
// rule engine and the template engine.
//
// A Value is a closed tagged union over thirteen kinds: null, string,
// number, boolean, binary, array, object, group, datetime, duration, mode,
// expression and regex. Numbers keep integer and float identity apart;
// objects and groups keep insertion order.
//
// # Equality and ordering
//
// Equal is structural and never crosses kinds. Compare orders numbers
// (in float64 space), strings, durations and datetimes of the same
// sub-kind, and reports false for every other pair.
//
// # Encodings
//
// Two document forms are supported:
//
//   - the tagged form, {"type": "<kind>", "value": <payload>}, which
//     round-trips every kind and is what json.Marshal and yaml.Marshal produce
//   - the plain form (Plain, ToJSON, ParseJSON, ParseYAML), which uses only
//     strings, numbers, booleans, arrays, objects and null
//
// Binary payloads are base64, datetimes are RFC 3339 (YYYY-MM-DD for dates,
// HH:MM:SS for times) and durations are integer milliseconds.
//
//	v := value.ObjectOf(value.NewObject().
//	    Set("name", value.String("Alice")).
//	    Set("age", value.Int(30)))
//	b, _ := json.Marshal(v)
//	// {"type":"object","value":{"name":{"type":"string","value":"Alice"},...}}
package value
