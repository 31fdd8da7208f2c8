package dynamic

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools"
)

// GuideRegistry loads guide definitions and turns them into MCP tools.
type GuideRegistry struct {
	configDir string
	guides    []*GuideConfig
}

func NewGuideRegistry(configDir string) *GuideRegistry {
	return &GuideRegistry{
		configDir: configDir,
		guides:    make([]*GuideConfig, 0),
	}
}

// LoadGuides replaces the registry contents with the guides found on load.
func (r *GuideRegistry) LoadGuides() error {
	guides, err := LoadGuides(r.configDir)
	if err != nil {
		return fmt.Errorf("failed to load guides from config directory: %w", err)
	}

	r.guides = guides
	slog.Info("loaded guidance tools", "count", len(guides), "configDir", r.configDir)
	return nil
}

func (r *GuideRegistry) GetToolCount() int {
	return len(r.guides)
}

func (r *GuideRegistry) GetGuides() []*GuideConfig {
	return r.guides
}

// GetServerTools builds one read-only server tool per guide.
func (r *GuideRegistry) GetServerTools(deps *tools.ToolDependencies) []server.ServerTool {
	serverTools := make([]server.ServerTool, 0, len(r.guides))
	for _, guide := range r.guides {
		serverTools = append(serverTools, buildServerTool(guide, deps))
	}
	return serverTools
}

func buildServerTool(guide *GuideConfig, deps *tools.ToolDependencies) server.ServerTool {
	title := guide.Title
	if title == "" {
		title = guide.Name
	}

	opts := []mcp.ToolOption{
		mcp.WithDescription(buildEnrichedDescription(guide)),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	if guide.Pattern != "" {
		opts = append(opts, mcp.WithBoolean("includeMatches",
			mcp.Description(fmt.Sprintf("Also run the %q detector and append its current matches", guide.Pattern)),
		))
	}

	slog.Debug("built guidance tool", "name", guide.Name, "category", guide.Category)

	return server.ServerTool{
		Tool:    mcp.NewTool(guide.Name, opts...),
		Handler: NewGuideHandler(guide, deps),
	}
}

// GetCategory returns the category of the named guide, or "unknown".
func (r *GuideRegistry) GetCategory(toolName string) string {
	for _, guide := range r.guides {
		if guide.Name == toolName {
			return guide.Category
		}
	}
	return "unknown"
}

func (r *GuideRegistry) GetGuidesByCategory(category string) []*GuideConfig {
	guides := make([]*GuideConfig, 0)
	for _, guide := range r.guides {
		if guide.Category == category {
			guides = append(guides, guide)
		}
	}
	return guides
}

// ListCategories returns the distinct categories in sorted order.
func (r *GuideRegistry) ListCategories() []string {
	seen := make(map[string]bool)
	for _, guide := range r.guides {
		seen[guide.Category] = true
	}

	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}
