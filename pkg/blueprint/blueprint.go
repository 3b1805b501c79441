// Package blueprint materializes a declarative folder/file template tree
// under a target root, applying the slug naming convention as it walks.
// Creation is idempotent: existing folders are left alone and existing
// files are never overwritten, so a retried call after a partial failure
// safely completes the remainder.
package blueprint

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/orgvault/orgvault/pkg/slug"
	"github.com/orgvault/orgvault/pkg/vault"
)

// Node is one entry of a blueprint tree. File names carry their
// extension; the stem is what gets slugified. RenameWithSlug overrides
// the inherited rename behavior for this node and its subtree; it is
// AND-combined with the ancestors' setting, which defaults to true at the
// root.
type Node struct {
	Name           string
	Folder         bool
	RenameWithSlug *bool
	Content        string
	Children       []Node
}

// Rename is a convenience for building RenameWithSlug pointers inline.
func Rename(enabled bool) *bool { return &enabled }

// Materialize walks nodes depth-first and creates the corresponding
// structure under targetRoot. Seed content is written only when seed is
// true and the node supplies content; files are otherwise created empty.
func Materialize(ctx context.Context, v vault.Vault, nodes []Node, targetRoot, code, pathID string, seed bool) error {
	return materialize(ctx, v, nodes, targetRoot, code, pathID, seed, true, false)
}

func materialize(ctx context.Context, v vault.Vault, nodes []Node, targetRoot, code, pathID string, seed, renameEnabled, insideInitiatives bool) error {
	for _, node := range nodes {
		enabled := renameEnabled
		if node.RenameWithSlug != nil {
			enabled = enabled && *node.RenameWithSlug
		}
		if node.Folder {
			if err := materializeFolder(ctx, v, node, targetRoot, code, pathID, seed, enabled, insideInitiatives); err != nil {
				return err
			}
			continue
		}
		if err := materializeFile(ctx, v, node, targetRoot, code, pathID, seed, enabled, insideInitiatives); err != nil {
			return err
		}
	}
	return nil
}

func materializeFolder(ctx context.Context, v vault.Vault, node Node, targetRoot, code, pathID string, seed, enabled, insideInitiatives bool) error {
	isInitiatives := strings.EqualFold(node.Name, string(slug.ResourceInitiatives))
	name := node.Name
	if enabled {
		if isInitiatives {
			name = slug.BuildResourceFolderName(code, pathID)
		} else {
			name = slug.BuildFolderName(node.Name, slug.BuildTeamSlug(node.Name, code, pathID))
		}
	}
	target := path.Join(targetRoot, name)
	exists, err := v.Exists(ctx, target)
	if err != nil {
		return fmt.Errorf("checking folder %q: %w", target, err)
	}
	if !exists {
		if err := v.CreateFolder(ctx, target); err != nil {
			return fmt.Errorf("creating folder %q: %w", target, err)
		}
	}
	return materialize(ctx, v, node.Children, target, code, pathID, seed, enabled, insideInitiatives || isInitiatives)
}

func materializeFile(ctx context.Context, v vault.Vault, node Node, targetRoot, code, pathID string, seed, enabled, insideInitiatives bool) error {
	stem := strings.TrimSuffix(node.Name, path.Ext(node.Name))
	name := node.Name
	if enabled {
		if kind, ok := slug.ParseResourceKind(stem); ok && insideInitiatives {
			name = slug.BuildResourceFileName(kind, code, pathID)
		} else {
			name = fmt.Sprintf("%s (%s).md", stem, slug.BuildTeamSlug(stem, code, pathID))
		}
	}
	target := path.Join(targetRoot, name)
	// Existence is re-checked right before the write; the tree may have
	// changed since any earlier listing.
	exists, err := v.Exists(ctx, target)
	if err != nil {
		return fmt.Errorf("checking file %q: %w", target, err)
	}
	if exists {
		return nil
	}
	content := ""
	if seed && node.Content != "" {
		content = node.Content
	}
	if err := v.WriteFile(ctx, target, content); err != nil {
		return fmt.Errorf("creating file %q: %w", target, err)
	}
	return nil
}
