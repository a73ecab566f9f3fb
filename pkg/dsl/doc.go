/*
Package dsl provides a fluent Go builder for funnel definitions.

It is the programmatic counterpart of the Loam documents: useful for embedding funnels in a
binary, for tests, and for IDE autocompletion.

Example usage:

	b := dsl.New("qualifier").
		Destination("/ar/booking").
		Static("source", "landing")

	b.Choice("students", "How many students do you send per year?", "< 50", "50-150", "> 150")
	b.Input("email", "Your email").Hint(domain.HintEmail).Placeholder("you@example.com")

	f, err := b.Build()
*/
package dsl
