package loader

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"itorder/internal"
)

// GraphFile is the scanner hand-off format. JSON files decode too, since
// YAML is a superset of JSON.
type GraphFile struct {
	Components    []internal.Component    `yaml:"components" validate:"dive"`
	Relationships []internal.Relationship `yaml:"relationships" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func LoadGraph(path string) (*GraphFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var gf GraphFile
	if err := yaml.NewDecoder(f).Decode(&gf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &gf, nil
}

// Check validates the shape of every record. It reports problems the graph
// itself would reject too, but all at once and with field names.
func (gf *GraphFile) Check() error {
	return validate.Struct(gf)
}
