// ABOUTME: Populates a ToolRegistry from an external MCP server's tool list, alongside the built-in file/shell/search tools.
// ABOUTME: Grounded on the intelligencedev-manifold mcpclient package's Manager/mcpTool adapter, trimmed to one server connection at a time.

package tools

import (
	gocontext "context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	mcppkg "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/bytecraft/llm"
)

// RegisterMCPServer launches cmd, speaks MCP over its stdio, lists the
// server's tools, and registers each as "<serverName>_<toolName>" so its
// names cannot collide with the built-in tool set. The caller is
// responsible for closing the returned session on shutdown.
func RegisterMCPServer(ctx gocontext.Context, registry *ToolRegistry, serverName string, cmd *exec.Cmd) (*mcppkg.ClientSession, error) {
	client := mcppkg.NewClient(&mcppkg.Implementation{Name: "bytecraft", Version: "1"}, nil)

	session, err := client.Connect(ctx, &mcppkg.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect mcp server %s: %w", serverName, err)
	}

	for tool, toolErr := range session.Tools(ctx, nil) {
		if toolErr != nil {
			break
		}
		_ = registry.Register(newMCPTool(serverName, session, tool))
	}
	return session, nil
}

func newMCPTool(serverName string, session *mcppkg.ClientSession, tool *mcppkg.Tool) *RegisteredTool {
	name := sanitizeMCPName(serverName + "_" + tool.Name)

	return &RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        name,
			Description: tool.Description,
			Parameters:  mcpInputSchemaJSON(tool),
		},
		Description: tool.Description,
		Execute: func(args map[string]any, env ExecutionEnvironment) (string, error) {
			if args == nil {
				args = map[string]any{}
			}
			res, err := session.CallTool(gocontext.Background(), &mcppkg.CallToolParams{Name: tool.Name, Arguments: args})
			if err != nil {
				return "", err
			}

			var texts []string
			for _, c := range res.Content {
				if tc, ok := c.(*mcppkg.TextContent); ok {
					texts = append(texts, tc.Text)
				}
			}
			joined := strings.Join(texts, "\n")
			if res.IsError {
				return "", fmt.Errorf("%s", joined)
			}
			return joined, nil
		},
	}
}

// mcpInputSchemaJSON renders a tool's declared input schema as the raw JSON
// schema our ToolDefinition.Parameters expects, defaulting to an empty
// object schema when the server declares none.
func mcpInputSchemaJSON(tool *mcppkg.Tool) json.RawMessage {
	if tool.InputSchema == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	b, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return b
}

func sanitizeMCPName(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
