package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers the wizard tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("wizard-state",
			mcp.WithDescription("Report the current step, missing slots and verification progress"),
		),
		s.handleState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-set-artifact",
			mcp.WithDescription("Store an artifact in a slot. Send binary content as base64 in 'data' or plain text in 'text'"),
			mcp.WithString("slot", mcp.Required(),
				mcp.Description("Slot name, e.g. document or selfie"),
			),
			mcp.WithString("data",
				mcp.Description("Base64 content, a data: URL prefix is allowed"),
			),
			mcp.WithString("text",
				mcp.Description("Plain text content, used for choice slots such as id_type"),
			),
			mcp.WithString("name",
				mcp.Description("Display name such as a file name (default: the slot name)"),
			),
		),
		s.handleSetArtifact,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-advance",
			mcp.WithDescription("Move to the next step if the current one is complete"),
		),
		s.handleAdvance,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-back",
			mcp.WithDescription("Return to the previous step, keeping collected artifacts"),
		),
		s.handleBack,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-start-verification",
			mcp.WithDescription("Start the simulated verification on the verification step"),
			mcp.WithNumber("duration_ms",
				mcp.Description("Total verification time in milliseconds (default: configured verify_duration)"),
			),
		),
		s.handleStartVerification,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-tick",
			mcp.WithDescription("Advance the verification clock"),
			mcp.WithNumber("delta_ms", mcp.Required(),
				mcp.Description("Elapsed time in milliseconds"),
			),
		),
		s.handleTick,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-reset",
			mcp.WithDescription("Start the session over, discarding every artifact"),
		),
		s.handleReset,
	)
}
