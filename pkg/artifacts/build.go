package artifacts

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/platinummonkey/weaver/pkg/protohost"
)

// Names of the files FromOutput produces. Edited source units are stored
// below SourceDir.
const (
	DescriptorSetFile  = "descriptor_set.binpb"
	DescriptorJSONFile = "descriptor_set.json"
	SourceDir          = "src"
)

// Metadata keys set by FromOutput
const (
	MetaProgramHash = "program-hash"
	MetaRevision    = "revision"
	MetaFiles       = "descriptor-files"
)

// FromOutput builds the store request for one build output.
func FromOutput(name string, out *protohost.Output, metadata map[string]string) (*StoreRequest, error) {
	if out == nil {
		return nil, protohost.ErrNoOutput
	}

	binary, err := out.Bytes()
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor set: %w", err)
	}
	jsonData, err := out.JSON()
	if err != nil {
		return nil, fmt.Errorf("render descriptor set: %w", err)
	}

	files := []File{
		{Path: DescriptorSetFile, Content: binary},
		{Path: DescriptorJSONFile, Content: jsonData},
	}
	for _, u := range out.Program().Units() {
		files = append(files, File{Path: SourceDir + "/" + u.Path, Content: []byte(u.Content)})
	}

	meta := maps.Clone(metadata)
	if meta == nil {
		meta = make(map[string]string)
	}
	meta[MetaProgramHash] = out.Program().Hash()
	meta[MetaRevision] = strconv.Itoa(out.Revision())
	meta[MetaFiles] = strconv.Itoa(len(out.Files()))

	return &StoreRequest{Name: name, Files: files, Metadata: meta}, nil
}
