package scales

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	cgerrors "github.com/dygy/codegroove/internal/errors"
)

// hclScaleFile is the top-level structure of a scale file:
//
//	scale "lydian" {
//	  notes = ["F3", "G3", "A3", "B3", "C4", "D4", "E4"]
//	}
type hclScaleFile struct {
	Scales []*hclScale `hcl:"scale,block"`
}

type hclScale struct {
	Name  string   `hcl:"name,label"`
	Notes []string `hcl:"notes"`
}

// LoadFile parses an HCL scale file and registers every scale it defines.
// Nothing is registered if any scale in the file is invalid.
func (r *Registry) LoadFile(path string) ([]Scale, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, cgerrors.NewScaleFileError(path, "", diags)
	}
	return r.load(path, file)
}

// LoadHCL is LoadFile for in-memory content; filename is used in diagnostics.
func (r *Registry) LoadHCL(src []byte, filename string) ([]Scale, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, cgerrors.NewScaleFileError(filename, "", diags)
	}
	return r.load(filename, file)
}

func (r *Registry) load(path string, file *hcl.File) ([]Scale, error) {
	var parsed hclScaleFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, cgerrors.NewScaleFileError(path, "", diags)
	}

	loaded := make([]Scale, 0, len(parsed.Scales))
	for _, hs := range parsed.Scales {
		s := Scale{Name: hs.Name, Notes: hs.Notes}
		if err := s.Validate(); err != nil {
			return nil, cgerrors.NewScaleFileError(path, hs.Name, err)
		}
		loaded = append(loaded, s)
	}

	for _, s := range loaded {
		if err := r.Add(s); err != nil {
			return nil, cgerrors.NewScaleFileError(path, s.Name, err)
		}
	}
	return loaded, nil
}
