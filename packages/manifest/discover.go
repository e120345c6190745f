package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
)

// skipDirs are never searched for manifests.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".git":         true,
}

// FindAll returns every manifest under dir whose kind matches kind
// (case-insensitive). An empty kind matches all manifests. Files that are
// not apix manifests are ignored. Results are sorted by path.
func FindAll(dir, kind string) ([]*Manifest, error) {
	var found []*Manifest
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (skipDirs[name] || (strings.HasPrefix(name, ".") && name != ".apix")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsManifestFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		m, err := Parse(data, path)
		if err != nil {
			return nil
		}
		if kind == "" || strings.EqualFold(m.KindName(), kind) {
			found = append(found, m)
		}
		return nil
	})
	if err != nil {
		return nil, errdef.IO(dir, err)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

// Find returns the manifest under dir with the given kind and name. Two
// manifests of the same kind sharing that name are an error.
func Find(dir, kind, name string) (*Manifest, error) {
	all, err := FindAll(dir, kind)
	if err != nil {
		return nil, err
	}
	var match *Manifest
	for _, m := range all {
		if m.Metadata.Name != name {
			continue
		}
		if match == nil {
			match = m
			continue
		}
		if strings.EqualFold(match.KindName(), m.KindName()) {
			return nil, errdef.Newf(errdef.KindManifest, name, "%s %q is defined in both %s and %s",
				strings.ToLower(m.KindName()), name, match.Path, m.Path)
		}
	}
	if match == nil {
		return nil, errdef.Newf(errdef.KindManifest, name, "no %s named %q found in %s", strings.ToLower(kind), name, dir)
	}
	return match, nil
}

// IsManifestFile reports whether path has a YAML extension.
func IsManifestFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
