package types

// StateQuery is a request to read committed state.
type StateQuery struct {
	Path QueryPath `cramberry:"1"`
	Data []byte    `cramberry:"2"`
}

// StateQueryResult is the application's response to a state query.
type StateQueryResult struct {
	Code   uint32 `cramberry:"1"`
	Key    []byte `cramberry:"2"`
	Value  []byte `cramberry:"3"`
	Height uint64 `cramberry:"4"`
	Info   string `cramberry:"5"`
}

// Found returns true if the query resolved to a value.
func (r StateQueryResult) Found() bool { return r.Code == 0 }
