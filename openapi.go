package awsbot

import _ "embed"

// OpenAPIYAML is the command API description served at /spec.yaml.
//
//go:embed openapi.yaml
var OpenAPIYAML []byte
