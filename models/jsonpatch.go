package models

import "encoding/json"

// JSON-Patch operation names (RFC 6902).
const (
	PatchOpAdd     = "add"
	PatchOpRemove  = "remove"
	PatchOpReplace = "replace"
	PatchOpMove    = "move"
	PatchOpCopy    = "copy"
	PatchOpTest    = "test"
)

// JSONPatchOperation is a single RFC 6902 operation. A patch is an ordered
// slice of operations applied atomically by the server.
type JSONPatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
}

// MarshalJSON always writes value for add, replace and test, so a nil Value
// encodes as an explicit null there.
func (o JSONPatchOperation) MarshalJSON() ([]byte, error) {
	type plain JSONPatchOperation

	switch o.Op {
	case PatchOpAdd, PatchOpReplace, PatchOpTest:
		return json.Marshal(struct {
			Op    string `json:"op"`
			Path  string `json:"path"`
			Value any    `json:"value"`
			From  string `json:"from,omitempty"`
		}{o.Op, o.Path, o.Value, o.From})
	}
	return json.Marshal(plain(o))
}

// PatchAdd adds value at path.
func PatchAdd(path string, value any) JSONPatchOperation {
	return JSONPatchOperation{Op: PatchOpAdd, Path: path, Value: value}
}

// PatchRemove removes the value at path.
func PatchRemove(path string) JSONPatchOperation {
	return JSONPatchOperation{Op: PatchOpRemove, Path: path}
}

// PatchReplace replaces the value at path.
func PatchReplace(path string, value any) JSONPatchOperation {
	return JSONPatchOperation{Op: PatchOpReplace, Path: path, Value: value}
}

// PatchMove moves the value at from to path.
func PatchMove(from, path string) JSONPatchOperation {
	return JSONPatchOperation{Op: PatchOpMove, Path: path, From: from}
}

// PatchCopy copies the value at from to path.
func PatchCopy(from, path string) JSONPatchOperation {
	return JSONPatchOperation{Op: PatchOpCopy, Path: path, From: from}
}

// PatchTest asserts that the value at path equals value.
func PatchTest(path string, value any) JSONPatchOperation {
	return JSONPatchOperation{Op: PatchOpTest, Path: path, Value: value}
}
