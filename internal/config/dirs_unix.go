//go:build !windows

package config

import (
	"path/filepath"
	"strings"
)

// searchDirs lists the XDG config directories in priority order.
func searchDirs(lookup func(string) (string, bool)) []string {
	var dirs []string
	if home, ok := lookup("XDG_CONFIG_HOME"); ok && home != "" {
		dirs = append(dirs, home)
	} else if home, ok := lookup("HOME"); ok && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config"))
	}
	xdgDirs, ok := lookup("XDG_CONFIG_DIRS")
	if !ok || xdgDirs == "" {
		xdgDirs = "/etc/xdg"
	}
	for _, dir := range strings.Split(xdgDirs, ":") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
