/*
Package funnel is a lead-qualification wizard engine.

A funnel is an ordered, unbranching sequence of steps. Choice steps ask the visitor to pick one
option; input steps collect a typed value bound to a field key. Once the last step is answered the
collected Lead Record is sent to a record-keeping backend (see pkg/gateway) and, when it is
accepted, the host is told where to send the visitor next, typically a booking page.

# Concept

The engine is stateless: a State goes in, a new State comes out, and the input is never mutated.
This lets the same definition be served from an HTTP API, an MCP server or a terminal runner.
A Controller wraps one visitor's State for hosts that keep it in memory and guarantees that a
double click on "submit" never sends two requests.

# Usage

	eng, err := funnel.New("./funnels", "qualifier",
		funnel.WithSubmitter(gateway.New(os.Getenv("GOOGLE_SCRIPT_URL"))),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctrl := eng.NewController(ctx, func(destination string) {
		log.Println("redirect to", destination)
	})

	_ = ctrl.Select(ctx, "Plus de 150 étudiants")
	_ = ctrl.Advance(ctx)
*/
package funnel
