// Package template defines the reusable inspection-form schema: ordered
// fields with types, validation constraints, and conditional-visibility
// rules referencing other fields' answers.
//
// The package is purely structural. It validates templates at authoring time
// (Validate) and supports the clone lifecycle (Clone); runtime evaluation of
// rules against live answers lives in pkg/engine.
package template
