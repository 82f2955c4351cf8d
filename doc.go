/*
Package wayfinder is a traversal engine for branching decision flows.

A flow is a directed graph of steps authored in a visual editor: informational
steps to read, single-choice and multi-choice questions, and terminal steps.
Wayfinder walks such a graph on behalf of a user, tracking the current step,
the selections made there and the path taken, so hosts can offer forward
navigation, back navigation and restart.

# Concept

Traversal is a pure function of an immutable graph and an explicit State
value. Every operation returns a new State; a failed Advance returns the input
unchanged. Hosts (the interactive runner, the HTTP server, the MCP server)
keep states wherever they like, typically in a session store.

Multi-choice steps route through output paths. Each path lists the choices it
requires; the path whose requirements are all selected and that requires the
most choices wins, ties broken by label. A path requiring nothing is an
"else" path.

# Usage

	eng, err := wayfinder.New("./onboarding.json")
	if err != nil {
		log.Fatal(err)
	}

	state, err := eng.Start("")
	if err != nil {
		log.Fatal(err)
	}

	state, _ = eng.Toggle(state, "newcomer")
	state, err = eng.Advance(state)
	if errors.Is(err, domain.ErrNoPathDefined) {
		// ask the user to pick something else
	}

	view, _ := eng.View(state)
	fmt.Println(view.Step.Content)
*/
package wayfinder
