/*
Package dsl provides a fluent builder for programmatically constructing Wayfinder flow graphs.

It lets developers define decision flows in Go instead of JSON or YAML
documents. This is particularly useful for unit tests, embedding flows in a
binary, and leveraging IDE autocompletion/type-checking.

Example usage:

	b := dsl.New()

	b.Info("start", "Welcome!").
		Go("stack")

	b.Single("stack", "Which runtime do you deploy on?").
		Choice("vm", "Virtual machines", "vm-tips").
		Choice("k8s", "Kubernetes", "k8s-tips")

	b.Multi("k8s-tips", "Which add-ons do you run?").
		Option("mesh", "Service mesh").
		Option("gitops", "GitOps").
		Path("both", "Mesh and GitOps", "advanced", "mesh", "gitops").
		Path("any", "Anything else", "basic")

	b.Terminal("advanced", "You are all set.").Restart()

	graph, err := b.Build()
*/
package dsl
