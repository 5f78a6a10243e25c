package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cppuml/internal/config"
)

// mcpServerName is the key of the cppuml entry in .mcp.json.
const mcpServerName = "cppuml"

// cppumlMCPEntry launches the MCP server over stdio from the project root.
var cppumlMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "cppuml",
  "args": ["serve-mcp"]
}`)

func newInitCmd(a *app) *cobra.Command {
	var force, withMCP bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName + " to the project root",
		Long: `Write a default ` + config.FileName + ` to the project root. With --mcp, also
register "cppuml serve-mcp" in the project's .mcp.json, keeping any other
servers listed there.`,
		Args: cobra.NoArgs,
		// A broken config file must not stop init --force from replacing it.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			a.setupLogger(false)
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			path, err := config.Write(a.rootDir, config.Default(), force)
			switch {
			case err == nil:
				fmt.Fprintf(a.stdout, "Wrote %s\n", path)
			case errors.Is(err, config.ErrExists) && withMCP:
				fmt.Fprintf(a.stdout, "Skipped %s (exists, use --force to overwrite)\n", path)
			default:
				return err
			}
			if !withMCP {
				return nil
			}
			return a.mergeMCPConfig(filepath.Join(a.rootDir, ".mcp.json"), force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files and entries")
	cmd.Flags().BoolVar(&withMCP, "mcp", false, "register the MCP server in .mcp.json")
	return cmd
}

// mergeMCPConfig adds the cppuml entry to the mcpServers object of path,
// creating the file when needed. Other top-level keys and servers are kept.
func (a *app) mergeMCPConfig(path string, force bool) error {
	doc := make(map[string]json.RawMessage)
	servers := make(map[string]json.RawMessage)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if raw, ok := doc["mcpServers"]; ok {
			if err := json.Unmarshal(raw, &servers); err != nil {
				return fmt.Errorf("parsing %s mcpServers: %w", path, err)
			}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if _, exists := servers[mcpServerName]; exists && !force {
		fmt.Fprintf(a.stdout, "Skipped .mcp.json %s entry (exists, use --force to overwrite)\n", mcpServerName)
		return nil
	}
	servers[mcpServerName] = cppumlMCPEntry

	raw, err := json.Marshal(servers)
	if err != nil {
		return fmt.Errorf("marshaling mcpServers: %w", err)
	}
	doc["mcpServers"] = raw
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	action := "Created"
	if data != nil {
		action = "Updated"
	}
	fmt.Fprintf(a.stdout, "%s .mcp.json with the %s MCP server\n", action, mcpServerName)
	return nil
}
