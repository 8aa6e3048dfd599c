package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	domain "github.com/example/todo-app/domain/todo"
)

const createTodoSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "text":     {"type": ["string", "null"]},
    "category": {"type": ["string", "null"]},
    "priority": {"type": ["string", "null"]}
  }
}`

const updateTodoSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "text":      {"type": ["string", "null"]},
    "completed": {"type": ["boolean", "null"]},
    "category":  {"type": ["string", "null"]},
    "priority":  {"type": ["string", "null"]}
  }
}`

var (
	createSchema = jsonschema.MustCompileString("create-todo.json", createTodoSchema)
	updateSchema = jsonschema.MustCompileString("update-todo.json", updateTodoSchema)
)

// decodeBody validates body against schema and decodes it into dst.
// An empty body is treated as an empty object.
func decodeBody(schema *jsonschema.Schema, body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return domain.Validation("Invalid JSON body")
	}

	if err := schema.Validate(doc); err != nil {
		return domain.Validation("Invalid request body: %s", describeSchemaError(err))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return domain.Validation("Invalid JSON body")
	}
	return nil
}

// describeSchemaError returns the most specific message in a validation error tree.
func describeSchemaError(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}

	field := strings.TrimPrefix(verr.InstanceLocation, "/")
	if field == "" {
		return verr.Message
	}
	return fmt.Sprintf("%s: %s", field, verr.Message)
}
