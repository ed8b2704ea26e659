package export

import (
	"gopkg.in/yaml.v3"

	"github.com/archlens-go/archlens/pkg/errs"
	"github.com/archlens-go/archlens/pkg/types"
)

func toYAML(g *types.CapsuleGraph) (string, error) {
	data, err := yaml.Marshal(buildJSONGraph(g))
	if err != nil {
		return "", errs.Generic("yaml export: %v", err)
	}
	return string(data), nil
}
