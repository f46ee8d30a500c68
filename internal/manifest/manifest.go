// Package manifest decodes the HCL stage manifest declaring the layer stack.
package manifest

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/changelog"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// Manifest is the decoded stage declaration: the ordered layer stack (file
// order encodes override strength, later = stronger) and the reserved
// changelog layer name.
type Manifest struct {
	Changelog string
	Layers    []scene.Layer
}

type fileSchema struct {
	Stage stageBlock `hcl:"stage,block"`
}

type stageBlock struct {
	Changelog string       `hcl:"changelog,optional"`
	Layers    []layerBlock `hcl:"layer,block"`
}

type layerBlock struct {
	Path    string `hcl:"path,label"`
	Status  string `hcl:"status,optional"`
	Owner   string `hcl:"owner,optional"`
	Visible *bool  `hcl:"visible,optional"`
}

// Load reads and decodes a manifest file.
func Load(path string) (Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return Decode(path, src)
}

// Decode parses manifest source. An unknown status token is a validation
// error: no partially decoded stack is returned.
func Decode(filename string, src []byte) (Manifest, error) {
	var f fileSchema
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", filename, err)
	}

	m := Manifest{Changelog: f.Stage.Changelog}
	if m.Changelog == "" {
		m.Changelog = changelog.DefaultLayer
	}

	for i, lb := range f.Stage.Layers {
		l := scene.Layer{
			FilePath: lb.Path,
			Owner:    lb.Owner,
			Visible:  true,
			Order:    i,
		}
		if lb.Status != "" {
			status, err := scene.ParseLayerStatus(lb.Status)
			if err != nil {
				return Manifest{}, fmt.Errorf("layer %s: %w", lb.Path, err)
			}
			l.Status = status
		} else {
			l.Status = scene.Draft
		}
		if lb.Visible != nil {
			l.Visible = *lb.Visible
		}
		m.Layers = append(m.Layers, l)
	}
	return m, nil
}
