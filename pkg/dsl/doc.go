/*
Package dsl provides a fluent builder for schema documents.

It is meant for tests and programmatic schema generation, where writing
the instruction graph as YAML would be noise:

	doc, err := dsl.New("mod-survey").
		Start("q-crop").Gather("crop", domain.ValueText).
		WhenEqual("coffee", "q-altitude").
		Then("q-weight").
		Done().
		Add("q-altitude").Gather("altitude", domain.ValueNumber).Optional().Done().
		Add("q-weight").Gather("weight", domain.ValueNumber).Done().
		Build()

Build validates the resulting document, so a miswired graph fails at
construction instead of at collection time.
*/
package dsl
