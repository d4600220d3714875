package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/interview-coach/internal/mcptools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mcpUser string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the interview tools over MCP on stdio",
	Long: `Runs a Model Context Protocol server on stdin/stdout so that an assistant can start
interviews, ask questions, submit typed answers and fetch results for one user.
Logs go to stderr.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpUser, "user", "u", "", "Username the tools act for (required)")
	_ = mcpCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, "stderr")
	if err != nil {
		return err
	}
	defer a.Close()

	owner, err := resolveUser(ctx, a.store, mcpUser)
	if err != nil {
		return err
	}

	server := mcptools.NewServer(mcptools.New(a.interviews, owner.ID, a.logger), version)
	a.logger.Info("mcp server starting", zap.String("user", owner.Username))
	return server.Run(ctx, &mcp.StdioTransport{})
}
