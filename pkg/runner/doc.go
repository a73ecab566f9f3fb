/*
Package runner drives a funnel Controller from a line-oriented stream.

It is the terminal counterpart of the HTTP adapter: each step is rendered, one line is
read, and the line is turned into a transition.

# Commands

  - a number or the text of an option selects it and moves on (choice steps)
  - any text answers an input step and moves on
  - an empty line advances (or retries a failed submission on the last step)
  - ":back" goes back one step, ":quit" leaves without submitting

# Usage

	ctrl := engine.NewController(ctx, func(dest string) { fmt.Println("->", dest) })
	r := runner.NewRunner(runner.WithRenderer(tui.NewRenderer()))
	if err := r.Run(ctx, ctrl); err != nil {
		log.Fatal(err)
	}
*/
package runner
