/*
Package runner implements the interactive loop that walks a flow with a user.

The runner renders the current step through an IOHandler, reads one command
per line, applies it to the engine and persists the resulting state when a
session store is configured. It can also follow a watched flow document and
resume the run on the new version after every save.

# Key Components

  - Runner: The loop itself.
  - IOHandler: Decouples presentation (human text, JSON lines) from the loop.
  - Command / Apply: The shared vocabulary of user actions, also used by the
    HTTP and MCP hosts.

# Commands

	1, 2, ...        toggle the numbered choice (a choice id works too)
	<Enter>, next    advance
	back             go to the previous step
	restart          start over
	help             list commands
	quit             leave the run

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithStore(file.NewStore("")),
		runner.WithSessionID("user-1"),
	)

	if _, err := r.Run(ctx, engine, nil); err != nil {
		log.Fatal(err)
	}
*/
package runner
