package wizard

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/JustZavala/onboard/internal/capture"
	"github.com/JustZavala/onboard/internal/tui/theme"
)

// FileItem represents a file or directory in the file picker.
type FileItem struct {
	name  string // Name of file/directory
	path  string // Full path
	isDir bool   // True if directory
}

// Render returns the one-line representation of the item.
func (f *FileItem) Render(width int) string {
	icon := "🖼"
	if f.isDir {
		icon = "📁"
	}

	display := icon + " " + f.name
	if width > 8 && len(display) > width-2 {
		display = display[:width-5] + "..."
	}
	return display
}

// FilePickerStep browses the filesystem for an image to use as an artifact.
type FilePickerStep struct {
	currentPath string      // Current directory path
	items       []*FileItem // All items in current directory
	selectedIdx int         // Index of selected item
	offset      int         // First visible item
	err         string      // Last directory read error
	width       int         // Available width
	height      int         // Available height
}

// NewFilePickerStep creates a file picker rooted at dir, or the working
// directory when dir is empty.
func NewFilePickerStep(dir string) *FilePickerStep {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		dir = cwd
	}

	fp := &FilePickerStep{
		width:  60,
		height: 10,
	}
	fp.loadDirectory(dir)
	return fp
}

// loadDirectory loads directories and image files from path.
func (f *FilePickerStep) loadDirectory(path string) {
	entries, err := os.ReadDir(path)
	if err != nil {
		f.err = err.Error()
		return
	}
	f.err = ""

	f.items = f.items[:0]
	absPath, err := filepath.Abs(path)
	if err == nil && absPath != filepath.Dir(absPath) {
		f.items = append(f.items, &FileItem{name: "..", path: filepath.Dir(absPath), isDir: true})
	}

	var dirs, files []*FileItem
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fullPath := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			dirs = append(dirs, &FileItem{name: entry.Name(), path: fullPath, isDir: true})
		} else if capture.IsImage(entry.Name()) {
			files = append(files, &FileItem{name: entry.Name(), path: fullPath})
		}
	}

	byName := func(items []*FileItem) {
		sort.Slice(items, func(i, j int) bool {
			return strings.ToLower(items[i].name) < strings.ToLower(items[j].name)
		})
	}
	byName(dirs)
	byName(files)

	// Directories first, then files
	f.items = append(f.items, dirs...)
	f.items = append(f.items, files...)
	f.currentPath = path
	f.selectedIdx = 0
	f.offset = 0
}

// SetSize updates the dimensions for the file picker.
func (f *FilePickerStep) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// Dir returns the directory being shown.
func (f *FilePickerStep) Dir() string {
	return f.currentPath
}

// visibleRows is the number of item rows that fit under the path header.
func (f *FilePickerStep) visibleRows() int {
	rows := f.height - 4
	if rows < 3 {
		rows = 3
	}
	return rows
}

// Update handles messages for the file picker step.
func (f *FilePickerStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if f.selectedIdx > 0 {
			f.selectedIdx--
		}
	case "down", "j":
		if f.selectedIdx < len(f.items)-1 {
			f.selectedIdx++
		}
	case "enter":
		if f.selectedIdx < 0 || f.selectedIdx >= len(f.items) {
			return nil
		}
		item := f.items[f.selectedIdx]
		if item.isDir {
			f.loadDirectory(item.path)
			return nil
		}
		return func() tea.Msg {
			return FileSelectedMsg{Path: item.path}
		}
	case "backspace":
		parentPath := filepath.Dir(f.currentPath)
		if parentPath != f.currentPath {
			f.loadDirectory(parentPath)
		}
	}

	// Keep the selection on screen
	rows := f.visibleRows()
	if f.selectedIdx < f.offset {
		f.offset = f.selectedIdx
	} else if f.selectedIdx >= f.offset+rows {
		f.offset = f.selectedIdx - rows + 1
	}
	return nil
}

// View renders the file picker step.
func (f *FilePickerStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.Subtle.Render(f.currentPath))
	b.WriteString("\n\n")

	if f.err != "" {
		b.WriteString(s.Error.Render(f.err))
		b.WriteString("\n")
	}

	hasFiles := false
	for _, item := range f.items {
		if !item.isDir {
			hasFiles = true
			break
		}
	}
	if !hasFiles {
		b.WriteString(s.Muted.Render("No images in this directory"))
		b.WriteString("\n")
	}

	end := f.offset + f.visibleRows()
	if end > len(f.items) {
		end = len(f.items)
	}
	for i := f.offset; i < end; i++ {
		line := f.items[i].Render(f.width)
		if i == f.selectedIdx {
			line = s.Selected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// SelectedPath returns the currently selected file path (empty if directory selected).
func (f *FilePickerStep) SelectedPath() string {
	if f.selectedIdx >= 0 && f.selectedIdx < len(f.items) {
		item := f.items[f.selectedIdx]
		if !item.isDir {
			return item.path
		}
	}
	return ""
}

// FileSelectedMsg is sent when a file is selected.
type FileSelectedMsg struct {
	Path string
}
