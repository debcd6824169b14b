// workflow-agent finds the YouTrack workflow rules that may explain a
// problem in a project and serves them to an LLM host over MCP.
//
// Usage:
//
//	workflow-agent serve
//	workflow-agent project DEMO
//	workflow-agent investigate DEMO [--format table|markdown|json] [--where EXPR]
//	workflow-agent brief DEMO --problem "the assignee keeps getting cleared"
//	workflow-agent docs [name]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
