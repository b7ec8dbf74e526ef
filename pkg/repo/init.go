package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultIgnoreTemplate = `# Build output
*.o
*.out
target/
build/

# Editor files
*.swp
.DS_Store
`

// WriteDefaultFiles seeds a fresh repository with a README and a starter
// .pocketignore. Existing files are left alone.
func (r *Repository) WriteDefaultFiles(projectName string) error {
	if projectName == "" {
		projectName = filepath.Base(r.Root)
	}
	readme := fmt.Sprintf("# %s\n\nManaged with pocket.\n", projectName)

	defaults := map[string]string{
		filepath.Join(r.Root, "README.md"): readme,
		r.ignoreFilePath():                 defaultIgnoreTemplate,
	}
	for path, content := range defaults {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := writeFileAtomic(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
