package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
)

// discoverBuildFiles walks root for every file carrying ext, skipping
// dotfiles and the cache files the loader writes alongside each source
// (".foo.ptm.cached"). It backs the informational listing --list_targets
// prints alongside the registered targets themselves, since a build file
// can include others that never register anything the root target reaches.
func discoverBuildFiles(root, ext string) ([]string, error) {
	var found []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			name := de.Name()
			if de.IsDir() && strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			if de.IsDir() {
				return nil
			}
			if strings.HasPrefix(name, ".") || filepath.Ext(name) != ext {
				return nil
			}
			found = append(found, path)
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}
