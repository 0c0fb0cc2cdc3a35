package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Workbook is a discovered workbook paired with the code year its name
// carries
type Workbook struct {
	FileInfo
	Year int
}

// Discovery finds the analysis workbooks under an input directory
type Discovery struct {
	basePath    string
	includeXLSX bool
}

// NewDiscovery creates a new file discovery instance. Macro-enabled
// workbooks are always included; includeXLSX adds plain .xlsx files.
func NewDiscovery(basePath string, includeXLSX bool) *Discovery {
	return &Discovery{basePath: basePath, includeXLSX: includeXLSX}
}

func (d *Discovery) matches(name string) bool {
	// Office lock files
	if strings.HasPrefix(name, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".xlsm" || (d.includeXLSX && ext == ".xlsx")
}

// FindWorkbooks walks basePath recursively and returns the matching
// workbooks sorted by path
func (d *Discovery) FindWorkbooks() ([]FileInfo, error) {
	var found []FileInfo
	err := filepath.WalkDir(d.basePath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !d.matches(entry.Name()) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		found = append(found, FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.basePath, err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Path < found[j].Path
	})
	return found, nil
}

// FindYearWorkbooks returns the discovered workbooks with their code year.
// Files whose name carries no year are returned separately.
func (d *Discovery) FindYearWorkbooks() ([]Workbook, []FileInfo, error) {
	found, err := d.FindWorkbooks()
	if err != nil {
		return nil, nil, err
	}
	var workbooks []Workbook
	var unnamed []FileInfo
	for _, f := range found {
		year, err := YearFromWorkbookName(f.Name)
		if err != nil {
			unnamed = append(unnamed, f)
			continue
		}
		workbooks = append(workbooks, Workbook{FileInfo: f, Year: year})
	}
	return workbooks, unnamed, nil
}

var nameSeparators = regexp.MustCompile(`[-_]`)

// YearFromWorkbookName derives the code year from a workbook file name:
// the second token of the name split on "-" and "_", prefixed with "20".
// "901-10_State_CE_Analysis_082024.xlsm" yields 2010.
func YearFromWorkbookName(name string) (int, error) {
	tokens := nameSeparators.Split(filepath.Base(name), -1)
	if len(tokens) < 2 || tokens[1] == "" {
		return 0, fmt.Errorf("workbook name %q carries no code year", name)
	}
	suffix := tokens[1]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("workbook name %q carries no code year: %q is not numeric", name, suffix)
		}
	}
	return strconv.Atoi("20" + suffix)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
