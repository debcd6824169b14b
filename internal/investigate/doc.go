// Package investigate finds the workflow rules that are enabled for a
// project. It lists the project's workflows, resolves each one concurrently,
// and merges the results in discovery order. A workflow that cannot be
// fetched contributes nothing; it never hides evidence from the others.
package investigate
