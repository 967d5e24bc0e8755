package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Mirror copies the graph named by prefix from src into dst. A prefix such
// as "graphs/web" selects "graphs/web" itself and "graphs/web.<ext>" but
// not "graphs/web2.upper" or "graphs/webcrawl/..."; a prefix ending in "/"
// selects the whole directory. Keys keep their path below the prefix's
// parent, so "graphs/web.nodes" lands as "web.nodes".
func Mirror(ctx context.Context, src BlobStore, prefix string, dst *LocalStore) ([]string, error) {
	keys, err := src.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	parent := path.Dir(prefix)
	copied := make([]string, 0, len(keys))
	for _, key := range keys {
		if !sameGraph(key, prefix) {
			continue
		}
		rel := key
		if parent != "." && parent != "/" {
			rel = strings.TrimPrefix(key, parent+"/")
		}
		rc, err := src.Open(ctx, key)
		if err != nil {
			return copied, err
		}
		_, err = dst.PutStream(ctx, rel, rc)
		rc.Close()
		if err != nil {
			return copied, fmt.Errorf("failed to copy %s: %w", key, err)
		}
		copied = append(copied, rel)
	}
	return copied, nil
}

func sameGraph(key, prefix string) bool {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return true
	}
	rest, ok := strings.CutPrefix(key, prefix)
	return ok && (rest == "" || rest[0] == '.')
}
