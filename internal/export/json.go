package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/lorenzsim/internal/scene"
)

type CurveData struct {
	Color   string      `json:"color"`
	Initial []float64   `json:"initial"`
	Times   []float64   `json:"times"`
	States  [][]float64 `json:"states"`
}

type Document struct {
	System     string             `json:"system"`
	Params     map[string]float64 `json:"params"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Horizon    float64            `json:"horizon"`
	Steps      int                `json:"steps"`
	Curves     []CurveData        `json:"curves"`
}

// NewDocument collects a coloured batch for JSON output. Failed members
// (nil trajectories) are left out.
func NewDocument(system string, params map[string]float64, integrator string, curves []scene.Curve) Document {
	doc := Document{
		System:     system,
		Params:     params,
		Integrator: integrator,
		Curves:     make([]CurveData, 0, len(curves)),
	}
	for _, c := range curves {
		tr := c.Trajectory
		if tr == nil || tr.Len() == 0 {
			continue
		}
		doc.Dt, doc.Horizon, doc.Steps = tr.Dt, tr.Horizon, tr.Len()
		cd := CurveData{
			Color:   c.Color.Hex(),
			Initial: tr.Initial(),
			Times:   tr.Times,
			States:  make([][]float64, tr.Len()),
		}
		for i, s := range tr.States {
			cd.States[i] = s
		}
		doc.Curves = append(doc.Curves, cd)
	}
	return doc
}

func WriteJSON(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func ExportJSON(path string, doc Document) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, doc)
}
