package codec

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	envelopeSchemaURL = "https://vectorlog.local/schemas/envelope.schema.json"
	logSchemaURL      = "https://vectorlog.local/schemas/log.schema.json"
)

const envelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "clock": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0}
    }
  },
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"enum": ["clock", "entry"]}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "clock"}}},
      "then": {
        "required": ["clock"],
        "properties": {"clock": {"$ref": "#/$defs/clock"}}
      }
    },
    {
      "if": {"properties": {"type": {"const": "entry"}}},
      "then": {
        "required": ["clock", "content", "writer"],
        "properties": {
          "clock": {"$ref": "#/$defs/clock"},
          "content": {"type": "string"},
          "writer": {
            "oneOf": [
              {"type": "string", "minLength": 1},
              {"type": "null"}
            ]
          }
        }
      }
    }
  ]
}`

const logSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "allOf": [
      {"$ref": "envelope.schema.json"},
      {"properties": {"type": {"const": "entry"}}}
    ]
  }
}`

var (
	envelopeValidator *jsonschema.Schema
	logValidator      *jsonschema.Schema
)

func init() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for url, schema := range map[string]string{
		envelopeSchemaURL: envelopeSchema,
		logSchemaURL:      logSchema,
	} {
		if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
			panic(fmt.Sprintf("codec schema load failed: %v", err))
		}
	}
	envelopeValidator = c.MustCompile(envelopeSchemaURL)
	logValidator = c.MustCompile(logSchemaURL)
}
