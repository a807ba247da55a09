package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/yaroslav/haloclient/models"
)

// readInput reads path, or stdin when path is "-", and converts YAML to JSON.
// JSON input passes through unchanged.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return nil, errors.New("an input file is required (-f FILE, or -f - for stdin)")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	out, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	return out, nil
}

// readObject decodes an object of type T from path.
func readObject[T any](path string, stdin io.Reader) (*T, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}

	var obj T
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	return &obj, nil
}

// readPatch builds a JSON patch from a file and from --op expressions. File
// operations come first.
func readPatch(path string, exprs []string, stdin io.Reader) ([]models.JSONPatchOperation, error) {
	var ops []models.JSONPatchOperation

	if path != "" {
		data, err := readInput(path, stdin)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &ops); err != nil {
			return nil, fmt.Errorf("failed to decode patch: %w", err)
		}
	}

	for _, expr := range exprs {
		op, err := parseOp(expr)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	if len(ops) == 0 {
		return nil, errors.New("a patch is required (-f FILE or --op)")
	}
	return ops, nil
}

// parseOp parses "OP PATH [VALUE|FROM]". VALUE is JSON, or a plain string
// when it is not valid JSON. For move and copy the third field is the
// source path.
//
//	replace /spec/displayName "Jane"
//	add /metadata/labels/team docs
//	remove /spec/avatar
//	move /spec/a /spec/b
func parseOp(expr string) (models.JSONPatchOperation, error) {
	parts := strings.SplitN(strings.TrimSpace(expr), " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[1], "/") {
		return models.JSONPatchOperation{}, fmt.Errorf("invalid patch operation %q: expected OP PATH [VALUE]", expr)
	}

	op, path := parts[0], parts[1]
	arg, hasArg := "", len(parts) == 3
	if hasArg {
		arg = strings.TrimSpace(parts[2])
	}

	switch op {
	case models.PatchOpRemove:
		if hasArg {
			return models.JSONPatchOperation{}, fmt.Errorf("invalid patch operation %q: remove takes no value", expr)
		}
		return models.PatchRemove(path), nil

	case models.PatchOpAdd, models.PatchOpReplace, models.PatchOpTest:
		if !hasArg {
			return models.JSONPatchOperation{}, fmt.Errorf("invalid patch operation %q: %s needs a value", expr, op)
		}
		return models.JSONPatchOperation{Op: op, Path: path, Value: parseValue(arg)}, nil

	case models.PatchOpMove, models.PatchOpCopy:
		if !hasArg || !strings.HasPrefix(arg, "/") {
			return models.JSONPatchOperation{}, fmt.Errorf("invalid patch operation %q: %s needs a target path", expr, op)
		}
		// "move FROM PATH" reads left to right
		return models.JSONPatchOperation{Op: op, Path: arg, From: path}, nil
	}

	return models.JSONPatchOperation{}, fmt.Errorf("invalid patch operation %q: unknown op %q", expr, op)
}

func parseValue(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
