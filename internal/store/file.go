package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
)

// FileName is the document file inside the data directory.
const FileName = "config.json"

// FilePersister stores the document as JSON in a directory of fs.
type FilePersister struct {
	fs  afero.Fs
	dir string
}

func NewFilePersister(fs afero.Fs, dir string) *FilePersister {
	return &FilePersister{fs: fs, dir: dir}
}

// Path returns the location of the document.
func (p *FilePersister) Path() string {
	return filepath.Join(p.dir, FileName)
}

func (p *FilePersister) Load() (*Document, error) {
	data, err := afero.ReadFile(p.fs, p.Path())
	if os.IsNotExist(err) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, errdefs.Persistence(err, "read %s", p.Path())
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errdefs.Persistence(err, "malformed %s", p.Path())
	}
	return &doc, nil
}

// Save writes doc to a temporary file next to the document and renames it over
// the previous version, so readers see either the old or the new document.
func (p *FilePersister) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return errdefs.Persistence(err, "encode config")
	}

	if err := p.fs.MkdirAll(p.dir, 0o700); err != nil {
		return errdefs.Persistence(err, "create %s", p.dir)
	}

	// TempFile creates the file with 0600; the document holds credentials.
	tmp, err := afero.TempFile(p.fs, p.dir, ".config-*.json")
	if err != nil {
		return errdefs.Persistence(err, "create temp file in %s", p.dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		p.fs.Remove(tmpName)
		return errdefs.Persistence(err, "write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		p.fs.Remove(tmpName)
		return errdefs.Persistence(err, "sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		p.fs.Remove(tmpName)
		return errdefs.Persistence(err, "close %s", tmpName)
	}
	if err := p.fs.Rename(tmpName, p.Path()); err != nil {
		p.fs.Remove(tmpName)
		return errdefs.Persistence(err, "replace %s", p.Path())
	}
	return nil
}
