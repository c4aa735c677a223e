package source

import "path/filepath"

// File represents a chunk of source code to be processed by the front-end. The
// "Contents" field is a raw string representation of the file's contents. The
// "Lines" field is a cached slice of the file's contents split by '\n' so that
// error messages aren't required to repeatedly split the contents.
type File struct {
	Filename string
	Contents string
	Lines    []string
}

// Dir returns the directory containing this file, used to resolve `require`
// paths relative to the script that invoked it.
func (f *File) Dir() string {
	return filepath.Dir(f.Filename)
}
