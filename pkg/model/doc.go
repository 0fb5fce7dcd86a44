// Package model defines the typed PMR form state: the field catalogue used by
// every tab of the dashboard, the dynamic collections (staffing, milestones,
// action items, accomplishments, risks) and the snapshot captured when slides
// are generated. Values are kept as the raw strings a user typed; numeric
// coercion happens in package derive so blank or malformed input never fails
// a write. Demo defaults ship as embedded YAML (see DemoDefaults).
package model
