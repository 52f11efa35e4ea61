//go:build windows

package config

import (
	"path/filepath"
)

func searchDirs(lookup func(string) (string, bool)) []string {
	var dirs []string
	if appdata, ok := lookup("APPDATA"); ok && appdata != "" {
		dirs = append(dirs, appdata)
	}
	if programdata, ok := lookup("ProgramData"); ok && programdata != "" {
		dirs = append(dirs, programdata)
	} else if systemdrive, ok := lookup("SystemDrive"); ok {
		dirs = append(dirs, filepath.Join(systemdrive, "ProgramData"))
	}
	return dirs
}
