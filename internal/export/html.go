package export

import (
	"bytes"
	"html/template"

	"github.com/archlens-go/archlens/pkg/errs"
	"github.com/archlens-go/archlens/pkg/types"
)

const interactiveHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>Architecture diagram</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; }
    .component { margin: 10px; padding: 10px; border: 1px solid #ccc; }
  </style>
</head>
<body>
  <h1>Architecture diagram</h1>
  <p>Components: {{.ComponentCount}}, Relations: {{.RelationCount}}</p>
  <p>Complexity (avg): {{printf "%.2f" .Metrics.ComplexityAverage}}, Coupling: {{printf "%.2f" .Metrics.CouplingIndex}}, Cohesion: {{printf "%.2f" .Metrics.CohesionIndex}}</p>
  {{range .Components}}
  <div class="component">
    <h3>{{.Name}}</h3>
    <p>Type: {{.CapsuleType}}</p>
    <p>Complexity: {{.Complexity}}</p>
    <p>File: {{.FilePath}}</p>
  </div>
  {{end}}
</body>
</html>
`

type htmlComponent struct {
	Name        string
	CapsuleType types.CapsuleType
	Complexity  uint32
	FilePath    string
}

type htmlData struct {
	ComponentCount int
	RelationCount  int
	Metrics        types.GraphMetrics
	Components     []htmlComponent
}

var interactiveHTMLTmpl = template.Must(template.New("interactive").Parse(interactiveHTMLTemplate))

// interactiveHTML renders a simple static HTML page enumerating
// components and metrics (spec.md §4.6).
func interactiveHTML(g *types.CapsuleGraph) (string, error) {
	data := htmlData{
		ComponentCount: len(g.Capsules),
		RelationCount:  len(g.Relations),
		Metrics:        g.Metrics,
	}
	for _, cap := range sortedCapsules(g) {
		data.Components = append(data.Components, htmlComponent{
			Name: cap.Name, CapsuleType: cap.CapsuleType, Complexity: cap.Complexity, FilePath: cap.FilePath,
		})
	}

	var buf bytes.Buffer
	if err := interactiveHTMLTmpl.Execute(&buf, data); err != nil {
		return "", errs.Generic("html export: %v", err)
	}
	return buf.String(), nil
}
