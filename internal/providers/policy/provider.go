// Package policy exposes the security surface as tools: audit log access,
// the active policy with its configuration sources, direct validator
// checks, and policy reload.
package policy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fsgate/fsgate/internal/config"
	"github.com/fsgate/fsgate/internal/logging"
	"github.com/fsgate/fsgate/internal/monitoring"
	"github.com/fsgate/fsgate/internal/security"
	"github.com/fsgate/fsgate/internal/types"
)

// Provider implements the security policy service
type Provider struct {
	store    *security.Store
	audit    *security.Audit
	paths    *security.PathValidator
	files    *security.FileValidator
	resolver *config.Resolver
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewProvider creates a policy provider. Metrics may be nil.
func NewProvider(store *security.Store, audit *security.Audit, paths *security.PathValidator, files *security.FileValidator, resolver *config.Resolver, logger *logging.Logger, metrics *monitoring.Metrics) *Provider {
	return &Provider{
		store:    store,
		audit:    audit,
		paths:    paths,
		files:    files,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "security",
		Name:        "Security Policy",
		Description: "Inspect the active policy, audit events, and run validator checks",
		Category:    types.CategorySecurity,
		Capabilities: []string{
			"audit",
			"policy",
			"check",
			"reload",
		},
		Tools: []types.Tool{
			{
				ID:          "security.events",
				Name:        "Security Events",
				Description: "List accumulated security events",
				Parameters: []types.Parameter{
					{Name: "limit", Type: "number", Description: "Max events to return (most recent)", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "security.clear_events",
				Name:        "Clear Security Events",
				Description: "Discard all accumulated security events",
				Parameters:  []types.Parameter{},
				Returns:     "boolean",
			},
			{
				ID:          "security.policy",
				Name:        "Active Policy",
				Description: "Show the active policy and each field's configuration source",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "security.check_path",
				Name:        "Check Path",
				Description: "Run path admission on a candidate path",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Candidate path", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "security.check_file",
				Name:        "Check File",
				Description: "Run the file-type policy on a candidate path",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Candidate path", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "security.reload",
				Name:        "Reload Policy",
				Description: "Re-resolve configuration and swap the active policy",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a security policy operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "security.events":
		return p.events(params)
	case "security.clear_events":
		return p.clearEvents()
	case "security.policy":
		return p.policy()
	case "security.check_path":
		return p.checkPath(params)
	case "security.check_file":
		return p.checkFile(params)
	case "security.reload":
		return p.reload()
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) events(params map[string]interface{}) (*types.Result, error) {
	events := p.audit.Events()
	if limit, ok := params["limit"].(float64); ok && limit > 0 && int(limit) < len(events) {
		events = events[len(events)-int(limit):]
	}

	items := make([]map[string]interface{}, 0, len(events))
	for _, event := range events {
		items = append(items, map[string]interface{}{
			"id":        event.ID,
			"timestamp": event.Timestamp.Unix(),
			"kind":      string(event.Kind),
			"attempted": event.Attempted,
			"resolved":  event.Resolved,
		})
	}
	return success(map[string]interface{}{"events": items, "count": len(items)})
}

func (p *Provider) clearEvents() (*types.Result, error) {
	count := p.audit.Len()
	p.audit.Clear()
	return success(map[string]interface{}{"cleared": true, "discarded": count})
}

func (p *Provider) policy() (*types.Result, error) {
	active := p.store.Current()
	resolution := p.resolver.Resolve()

	sources := make(map[string]interface{}, len(resolution.Sources))
	for key, source := range resolution.Sources {
		sources[key] = string(source)
	}

	return success(map[string]interface{}{
		"level":              active.Level.String(),
		"allowed_dirs":       active.AllowedDirs,
		"max_file_size":      active.MaxFileSize,
		"allowed_extensions": security.ListFromSet(active.AllowedExtensions),
		"blocked_extensions": security.ListFromSet(active.BlockedExtensions),
		"follow_symlinks":    active.FollowSymlinks,
		"audit_log":          active.AuditLog,
		"sources":            sources,
	})
}

func (p *Provider) checkPath(params map[string]interface{}) (*types.Result, error) {
	raw, ok := params["path"].(string)
	if !ok {
		return failure("path parameter required")
	}

	check := p.paths.ValidatePath(raw)
	return success(map[string]interface{}{
		"valid":              check.Valid,
		"path":               check.Path,
		"error":              check.Err,
		"security_violation": check.SecurityViolation,
	})
}

func (p *Provider) checkFile(params map[string]interface{}) (*types.Result, error) {
	raw, ok := params["path"].(string)
	if !ok || raw == "" {
		return failure("path parameter required")
	}

	// check_file operates on admitted paths only
	admitted := p.paths.ValidatePath(raw)
	if !admitted.Valid {
		return failure(admitted.Err)
	}

	check := p.files.ValidateFile(admitted.Path, nil)
	data := map[string]interface{}{
		"valid":     check.Valid,
		"error":     check.Err,
		"warnings":  check.Warnings,
		"extension": check.Info.Extension,
		"mime_type": check.Info.MIMEType,
		"category":  string(check.Info.Category),
	}
	if check.Info.Size != nil {
		data["size"] = *check.Info.Size
	}
	return success(data)
}

func (p *Provider) reload() (*types.Result, error) {
	resolution := p.resolver.Reload(p.store)
	if p.metrics != nil {
		p.metrics.IncReload()
	}
	if p.logger != nil {
		p.logger.Info("policy reloaded",
			zap.Int("errors", len(resolution.Errors)),
			zap.Int("warnings", len(resolution.Warnings)),
		)
	}
	return success(map[string]interface{}{
		"reloaded": true,
		"errors":   resolution.Errors,
		"warnings": resolution.Warnings,
	})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}
