/*
Package schema validates captured answers against their declared value
types.

Every gather field carries a value type (text, number, boolean, options,
entity, media, calculator); ForField maps the declaration to a Type whose
Validate method accepts or rejects a raw answer string. The collection
runtime runs these checks as part of its pre-submission pass.
*/
package schema
