// Package domain models the beach-safety reporting data that field
// personnel record and submit from shorewatch clients.
//
// # Location hierarchy
//
// Reports are filed against a two-level hierarchy: a [Beach] (e.g.
// "Santa Monica Beach") and a [BeachPost] belonging to it (e.g. "Post A").
// A post is only a valid choice once its parent beach is chosen, and a
// beach change always discards the previous post. The pair currently in
// effect is a [Selection]; submitted reports carry the composed
// "{beach} - {post}" label as a snapshot, not a live reference.
//
// # Report forms
//
// Two form variants exist, matching the backend's inform endpoints:
//
//	IncidentReport    → POST /api/inform2 (person-related incidents)
//	EnvironmentReport → POST /api/inform4 (wind, temperature, wave height)
//
// Both carry a date (serialized YYYY-MM-DD) and an hour/minute pair in
// 24-hour notation. Incident reports additionally tag one or more
// incidence categories from the fixed vocabulary in [Incidences].
//
// # Validation
//
// [Report.Validate] collects every violated field of a failure group
// before returning, so a user can fix a whole form in one pass: missing
// required fields are reported first, then out-of-range numeric values,
// then incidence tagging. Forms are transient; each instance is consumed
// exactly once by the submission pipeline and never persisted locally.
package domain
