package query

// FieldSelection is a runtime tree of booleans choosing which optional
// fields the portal must include per record kind. It deliberately stays
// value-level — the static, compile-time field-projection machinery a
// strongly-typed consumer might generate on top of this is out of scope
// for the core client.
type FieldSelection struct {
	Block       map[string]bool
	Transaction map[string]bool
	Log         map[string]bool
	Trace       map[string]bool
	StateDiff   map[string]bool
}

// alwaysSelected is unioned into every FieldSelection before it is sent
// to the portal, regardless of what the caller asked for.
var alwaysSelected = FieldSelection{
	Block:       map[string]bool{"number": true, "hash": true, "parentHash": true},
	Transaction: map[string]bool{"transactionIndex": true},
	Log:         map[string]bool{"logIndex": true, "transactionIndex": true},
	Trace:       map[string]bool{"transactionIndex": true, "traceAddress": true, "type": true},
	StateDiff:   map[string]bool{"transactionIndex": true, "address": true, "key": true, "kind": true},
}

func unionInto(dst map[string]bool, src map[string]bool) map[string]bool {
	if dst == nil && len(src) == 0 {
		return nil
	}
	out := make(map[string]bool, len(dst)+len(src))
	for k, v := range dst {
		if v {
			out[k] = true
		}
	}
	for k, v := range src {
		if v {
			out[k] = true
		}
	}
	return out
}

// WithAlwaysSelected returns the union of fs with the fields the portal
// requires regardless of user input (spec §3's "effective selection is
// the union of the user selection and the always-selected set").
func (fs FieldSelection) WithAlwaysSelected() FieldSelection {
	return FieldSelection{
		Block:       unionInto(fs.Block, alwaysSelected.Block),
		Transaction: unionInto(fs.Transaction, alwaysSelected.Transaction),
		Log:         unionInto(fs.Log, alwaysSelected.Log),
		Trace:       unionInto(fs.Trace, alwaysSelected.Trace),
		StateDiff:   unionInto(fs.StateDiff, alwaysSelected.StateDiff),
	}
}
