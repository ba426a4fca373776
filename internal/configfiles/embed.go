// Package configfiles provides the embedded example configuration and built-in flavor files.
// They seed a fresh installation and back the built-in flavor registry.
package configfiles

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const flavorsRoot = "flavors"

//go:embed reportforge.example.yaml
//go:embed all:flavors
var configFS embed.FS

// GetConfigExample returns the example reportforge.yaml content
func GetConfigExample() ([]byte, error) {
	return configFS.ReadFile("reportforge.example.yaml")
}

// FlavorFS returns the embedded flavor files rooted at the flavors directory
func FlavorFS() fs.FS {
	sub, err := fs.Sub(configFS, flavorsRoot)
	if err != nil {
		// flavorsRoot is embedded above, so Sub cannot fail
		panic(err)
	}
	return sub
}

// GetFlavorFile returns the content of one embedded flavor file
func GetFlavorFile(name string) ([]byte, error) {
	return configFS.ReadFile(path.Join(flavorsRoot, name))
}

// ListFlavorFiles returns the sorted names of the embedded flavor files
func ListFlavorFiles() []string {
	entries, err := configFS.ReadDir(flavorsRoot)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && isFlavorFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// GetAllFlavorFiles returns all embedded flavor files keyed by file name
func GetAllFlavorFiles() (map[string][]byte, error) {
	files := make(map[string][]byte)
	for _, name := range ListFlavorFiles() {
		data, err := GetFlavorFile(name)
		if err != nil {
			return nil, err
		}
		files[name] = data
	}
	return files, nil
}

// InitFlavorFiles copies the embedded flavor files into targetDir.
// Existing files are left untouched. It returns how many files were created.
func InitFlavorFiles(targetDir string) (int, error) {
	files, err := GetAllFlavorFiles()
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return 0, err
	}

	created := 0
	for name, data := range files {
		targetPath := filepath.Join(targetDir, name)

		if _, err := os.Stat(targetPath); err == nil {
			continue
		}

		if err := os.WriteFile(targetPath, data, 0644); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// FlavorFilesExist checks if targetDir contains at least one flavor file
func FlavorFilesExist(targetDir string) bool {
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return false
	}

	for _, entry := range entries {
		if !entry.IsDir() && isFlavorFile(entry.Name()) {
			return true
		}
	}
	return false
}

func isFlavorFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
