package main

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/yule44ka/workflow-agent/internal/logging"
	mcpserver "github.com/yule44ka/workflow-agent/internal/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Starts an MCP server over stdin/stdout. The LLM host launches this command
and calls the workflow tools directly.

The server watches its parent process and exits when the host goes away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			logger := logging.New("mcp")
			srv := mcpserver.NewServer(mcpserver.Deps{
				Projects:     client,
				Investigator: a.investigator(client),
				Docs:         a.docs(),
				Version:      version,
				Logger:       logger,
			})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			mcpserver.WatchParent(ctx, cancel, mcpserver.DefaultWatchInterval, logger)

			logger.Info("starting MCP server over stdio", "youtrack", client.BaseURL())
			return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
		},
	}
}
