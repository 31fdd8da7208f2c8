package tools

import "embed"

// ConfigFiles holds the fraud guidance tools, one folder per category.
// cmd/claimgraph hands it to the dynamic loader so installed binaries need no config directory.
//
//go:embed config/fraud/*.yaml config/workflow/*.yaml
var ConfigFiles embed.FS
