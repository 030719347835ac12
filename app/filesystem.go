package app

import (
	"fmt"
	"sort"

	"github.com/sarchlab/arena/sim"
)

// A FileEntry is one file in the simulated filesystem.
type FileEntry struct {
	Name       string         `json:"name"`
	Content    string         `json:"content"`
	CreatedAt  sim.VTimeInSec `json:"created_at"`
	ModifiedAt sim.VTimeInSec `json:"modified_at"`
}

// A Filesystem is an in-memory filesystem app.
type Filesystem struct {
	Base

	files map[string]*FileEntry
}

// NewFilesystem creates a filesystem app registered under the given name.
func NewFilesystem(name string) *Filesystem {
	fs := &Filesystem{
		files: make(map[string]*FileEntry),
	}

	t := NewTable(name)
	t.Register(sim.OpSpec{
		Name:   "create_file",
		Effect: sim.EffectWrite,
		Args: []sim.ArgSpec{
			{Name: "name", Type: "string", Required: true},
			{Name: "content", Type: "string"},
		},
	}, fs.createFile)
	t.Register(sim.OpSpec{
		Name:   "write_file",
		Effect: sim.EffectWrite,
		Args: []sim.ArgSpec{
			{Name: "name", Type: "string", Required: true},
			{Name: "content", Type: "string", Required: true},
		},
	}, fs.writeFile)
	t.Register(sim.OpSpec{
		Name:   "read_file",
		Effect: sim.EffectRead,
		Args: []sim.ArgSpec{
			{Name: "name", Type: "string", Required: true},
		},
	}, fs.readFile)
	t.Register(sim.OpSpec{
		Name:   "list_files",
		Effect: sim.EffectRead,
	}, fs.listFiles)
	t.Register(sim.OpSpec{
		Name:   "delete_file",
		Effect: sim.EffectDelete,
		Args: []sim.ArgSpec{
			{Name: "name", Type: "string", Required: true},
		},
	}, fs.deleteFile)

	fs.Init(t)

	return fs
}

func (fs *Filesystem) createFile(c *Ctx) (any, error) {
	name := c.String("name")
	if _, ok := fs.files[name]; ok {
		return nil, fmt.Errorf("file %s already exists", name)
	}

	fs.files[name] = &FileEntry{
		Name:       name,
		Content:    c.String("content"),
		CreatedAt:  c.Now,
		ModifiedAt: c.Now,
	}

	return name, nil
}

func (fs *Filesystem) writeFile(c *Ctx) (any, error) {
	name := c.String("name")
	f, ok := fs.files[name]
	if !ok {
		return nil, fmt.Errorf("file %s does not exist", name)
	}

	f.Content = c.String("content")
	f.ModifiedAt = c.Now

	return name, nil
}

func (fs *Filesystem) readFile(c *Ctx) (any, error) {
	name := c.String("name")
	f, ok := fs.files[name]
	if !ok {
		return nil, fmt.Errorf("file %s does not exist", name)
	}

	return f.Content, nil
}

func (fs *Filesystem) listFiles(_ *Ctx) (any, error) {
	names := make([]string, 0, len(fs.files))
	for name := range fs.files {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

func (fs *Filesystem) deleteFile(c *Ctx) (any, error) {
	name := c.String("name")
	if _, ok := fs.files[name]; !ok {
		return nil, fmt.Errorf("file %s does not exist", name)
	}

	delete(fs.files, name)

	return name, nil
}

// HasFile tells if a file exists. It is meant for condition predicates and
// validation, not for event execution.
func (fs *Filesystem) HasFile(name string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, ok := fs.files[name]
	return ok
}

// File returns a copy of the file entry with the given name.
func (fs *Filesystem) File(name string) (FileEntry, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, ok := fs.files[name]
	if !ok {
		return FileEntry{}, false
	}
	return *f, true
}
