package sql

import _ "embed"

// Schema creates the tasks table if it does not exist.
//
//go:embed schema.sql
var Schema string
