package n5

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/blang/semver"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/janelia-flyem/sp2body/labels"
)

const rootSchema = `{
	"type": "object",
	"required": ["n5"],
	"properties": {
		"n5": {"type": "string", "pattern": "^[0-9]+\\.[0-9]+\\.[0-9]+"}
	}
}`

const datasetSchema = `{
	"type": "object",
	"required": ["dimensions", "blockSize", "dataType", "compression"],
	"properties": {
		"dimensions": {"type": "array", "items": {"type": "integer", "minimum": 0}, "minItems": 3, "maxItems": 3},
		"blockSize": {"type": "array", "items": {"type": "integer", "minimum": 1}, "minItems": 3, "maxItems": 3},
		"dataType": {"enum": ["uint64"]},
		"compression": {
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"enum": ["raw", "gzip", "zstd"]},
				"level": {"type": "integer"}
			}
		},
		"planes": {"type": "array", "items": {"type": "integer"}}
	}
}`

var (
	compiledRootSchema    = jsonschema.MustCompileString("root.json", rootSchema)
	compiledDatasetSchema = jsonschema.MustCompileString("dataset.json", datasetSchema)
)

type rootAttributes struct {
	N5 string `json:"n5"`
}

type compression struct {
	Type  string `json:"type"`
	Level int    `json:"level,omitempty"`
}

type datasetAttributes struct {
	Dimensions  [3]int64            `json:"dimensions"`
	BlockSize   [3]int32            `json:"blockSize"`
	DataType    string              `json:"dataType"`
	Compression compression         `json:"compression"`
	Planes      []labels.PlaneIndex `json:"planes,omitempty"`
}

// decodeAttributes validates JSON attributes against a schema before decoding
// them into v.
func decodeAttributes(data []byte, sch *jsonschema.Schema, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// checkVersion makes sure a container's N5 version is one we can read.
func checkVersion(version string) error {
	ver, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("bad N5 version %q: %v", version, err)
	}
	ours := semver.MustParse(Version)
	if ver.Major != ours.Major {
		return fmt.Errorf("N5 version %s not supported, need major version %d", ver, ours.Major)
	}
	return nil
}

func jsonBytes(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
