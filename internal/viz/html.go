package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force"}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid"}

// GenerateHTML generates a self-contained HTML file for the graph visualization.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}
	if graph.IsEmpty() {
		return emptyHTML, nil
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	switch layout {
	case "", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force, circle, or grid", layout)
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	GraphJSON template.JS
	Layout    string
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js
// layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "cose"
	}
}

const emptyHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Conversion Graph - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state { text-align: center; color: #666; }
    .empty-state h2 { margin-bottom: 0.5em; color: #333; }
    .empty-state code { background: #e0e0e0; padding: 2px 6px; border-radius: 3px; }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>Your dataset doesn't have any units yet.</p>
    <p>Add units using <code>abm unit add</code>, edges using <code>abm edge add</code></p>
  </div>
</body>
</html>`

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Conversion Graph</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #f5f5f5;
    }
    #cy { width: 100%; height: 100vh; background: white; }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 320px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .label { font-weight: bold; margin-bottom: 4px; }
    #tooltip .detail { color: #555; margin: 2px 0; }
    #tooltip .quote { font-style: italic; color: #666; margin-top: 4px; }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          // Main-graph units - blue circles sized by degree
          {
            selector: 'node[island = 0]',
            style: {
              'background-color': '#4A90D9',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '10px',
              'text-valign': 'bottom',
              'text-margin-y': '5px',
              'width': 'mapData(degree, 0, 20, 20, 60)',
              'height': 'mapData(degree, 0, 20, 20, 60)'
            }
          },
          // Island units - orange, the conversion gaps
          {
            selector: 'node[island > 0]',
            style: {
              'background-color': '#E8923A',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '10px',
              'text-valign': 'bottom',
              'text-margin-y': '5px',
              'width': 'mapData(degree, 0, 20, 20, 60)',
              'height': 'mapData(degree, 0, 20, 20, 60)'
            }
          },
          // Verified edges - solid green
          {
            selector: 'edge[?verified]',
            style: {
              'line-color': '#5CB85C',
              'curve-style': 'bezier',
              'width': 2,
              'label': 'data(factor)',
              'font-size': '8px',
              'color': '#888'
            }
          },
          // Unverified edges - dashed gray
          {
            selector: 'edge[!verified]',
            style: {
              'line-color': '#BBB',
              'line-style': 'dashed',
              'curve-style': 'bezier',
              'width': 2,
              'label': 'data(factor)',
              'font-size': '8px',
              'color': '#888'
            }
          }
        ],
        layout: { name: layout, animate: false }
      });

      const tooltip = document.getElementById('tooltip');
      cy.on('mouseover', 'edge', function(evt) {
        const d = evt.target.data();
        tooltip.innerHTML =
          '<div class="label">' + d.source + ' &rarr; ' + d.target + '</div>' +
          '<div class="detail">factor: ' + d.factor + '</div>' +
          '<div class="quote">' + (d.quote || '') + '</div>';
        tooltip.style.display = 'block';
      });
      cy.on('mouseout', 'edge', function() {
        tooltip.style.display = 'none';
      });
      cy.on('mousemove', function(evt) {
        tooltip.style.left = (evt.originalEvent.pageX + 12) + 'px';
        tooltip.style.top = (evt.originalEvent.pageY + 12) + 'px';
      });
    })();
  </script>
</body>
</html>`
