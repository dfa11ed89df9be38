package filesystem

import (
	"context"
	"fmt"

	"github.com/fsgate/fsgate/internal/logging"
	"github.com/fsgate/fsgate/internal/security"
	"github.com/fsgate/fsgate/internal/types"
)

// Provider implements the filesystem service
type Provider struct {
	basic     *BasicOps
	directory *DirectoryOps
	transfer  *TransferOps
	metadata  *MetadataOps
	search    *SearchOps
}

// NewProvider creates a filesystem provider over the shared validators.
func NewProvider(store *security.Store, paths *security.PathValidator, files *security.FileValidator, logger *logging.Logger) *Provider {
	ops := &Ops{Store: store, Paths: paths, Files: files, Logger: logger}
	return &Provider{
		basic:     &BasicOps{Ops: ops},
		directory: &DirectoryOps{Ops: ops},
		transfer:  &TransferOps{Ops: ops},
		metadata:  &MetadataOps{Ops: ops},
		search:    &SearchOps{Ops: ops},
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	tools := p.basic.GetTools()
	tools = append(tools, p.directory.GetTools()...)
	tools = append(tools, p.transfer.GetTools()...)
	tools = append(tools, p.metadata.GetTools()...)
	tools = append(tools, p.search.GetTools()...)

	return types.Service{
		ID:          "filesystem",
		Name:        "Filesystem",
		Description: "Policy-mediated file operations",
		Category:    types.CategoryFilesystem,
		Capabilities: []string{
			"read", "write", "list", "transfer", "metadata", "search",
		},
		Tools: tools,
	}
}

// Execute runs a filesystem operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "filesystem.read":
		return p.basic.Read(ctx, params, appCtx)
	case "filesystem.write":
		return p.basic.Write(ctx, params, appCtx)
	case "filesystem.append":
		return p.basic.Append(ctx, params, appCtx)
	case "filesystem.create":
		return p.basic.Create(ctx, params, appCtx)
	case "filesystem.delete":
		return p.basic.Delete(ctx, params, appCtx)
	case "filesystem.exists":
		return p.basic.Exists(ctx, params, appCtx)
	case "filesystem.list":
		return p.directory.List(ctx, params, appCtx)
	case "filesystem.mkdir":
		return p.directory.Mkdir(ctx, params, appCtx)
	case "filesystem.tree":
		return p.directory.Tree(ctx, params, appCtx)
	case "filesystem.copy":
		return p.transfer.Copy(ctx, params, appCtx)
	case "filesystem.move":
		return p.transfer.Move(ctx, params, appCtx)
	case "filesystem.rename":
		return p.transfer.Rename(ctx, params, appCtx)
	case "filesystem.stat":
		return p.metadata.Stat(ctx, params, appCtx)
	case "filesystem.size":
		return p.metadata.Size(ctx, params, appCtx)
	case "filesystem.glob":
		return p.search.Glob(ctx, params, appCtx)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}
