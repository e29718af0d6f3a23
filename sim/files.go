package sim

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DiscoverFiles 展开 glob 并返回排序后的普通文件列表，保证多文件回放顺序稳定。
func DiscoverFiles(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad data pattern %q: %w", pattern, err)
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found matching pattern %q", pattern)
	}
	sort.Strings(files)
	return files, nil
}

// ResolveFiles 合并显式文件列表与 glob 结果；显式列表在前且保持原顺序。
func ResolveFiles(files []string, pattern string) ([]string, error) {
	out := append([]string(nil), files...)
	if pattern != "" {
		found, err := DiscoverFiles(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no data files configured")
	}
	return out, nil
}
