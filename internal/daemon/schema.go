package daemon

import (
	"github.com/xeipuuv/gojsonschema"

	"github.com/syncmend/syncmend/internal/failure"
)

// JSON schemas for each control API resource. Validation is a
// fail-fast contract: a body that does not match its schema becomes a
// validation Failure carrying every issue, and never a partially
// populated domain object.

const deviceSchema = `{
	"type": "object",
	"required": ["deviceID", "name"],
	"properties": {
		"deviceID": {"type": "string", "minLength": 1},
		"name": {"type": "string"},
		"addresses": {"type": "array", "items": {"type": "string"}},
		"paused": {"type": "boolean"}
	}
}`

const devicesSchema = `{
	"type": "array",
	"items": ` + deviceSchema + `
}`

const folderSchema = `{
	"type": "object",
	"required": ["id", "path", "devices"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"label": {"type": "string"},
		"path": {"type": "string"},
		"devices": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["deviceID"],
				"properties": {
					"deviceID": {"type": "string", "minLength": 1}
				}
			}
		},
		"paused": {"type": "boolean"}
	}
}`

const foldersSchema = `{
	"type": "array",
	"items": ` + folderSchema + `
}`

const configurationSchema = `{
	"type": "object",
	"required": ["folders", "devices"],
	"properties": {
		"version": {"type": "integer"},
		"folders": ` + foldersSchema + `,
		"devices": ` + devicesSchema + `
	}
}`

const systemStatusSchema = `{
	"type": "object",
	"required": ["myID"],
	"properties": {
		"myID": {"type": "string", "minLength": 1},
		"uptime": {"type": "integer"}
	}
}`

// validateSchema checks body against schema. On mismatch it returns a
// validation Failure with the joined issue list; on success nil.
func validateSchema(resource, schema string, body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		// The body is not even parseable JSON.
		return failure.Wrap(failure.Validation, err, "%s: response is not valid JSON", resource)
	}

	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, issue := range result.Errors() {
		issues = append(issues, issue.String())
	}

	return failure.Validationf(resource, issues)
}
