// Package config loads, defaults, and validates the runstack.jsonc
// configuration file.
//
// The file format is JSONC (JSON with comments), parsed by stripping
// comments with github.com/tidwall/jsonc before standard encoding/json
// unmarshalling. Every field has a built-in default, so a project with
// conventional layout needs no config file at all.
//
// Precedence, highest first: command-line flag > RUNSTACK_PORT/PORT
// environment variables > config file > built-in default.
package config
