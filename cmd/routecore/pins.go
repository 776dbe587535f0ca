package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/yaml"

	"github.com/mapgrid/routecore/internal/pinpoint"
)

type pinsCmd struct {
	Args struct {
		Input string `positional-arg-name:"IN" required:"true" description:"Path/symbol description (json)"`
	} `positional-args:"true"`

	Format string `short:"f" long:"format" choice:"yaml" choice:"json" default:"json" description:"Output format"`
}

// pinsInput is the on-disk description of a placement request.
type pinsInput struct {
	Path          []pinpoint.PathPoint   `json:"path"`
	LeftPadPx     float32                `json:"leftPadPx"`
	RightPadPx    float32                `json:"rightPadPx"`
	Symbols       []pinpoint.SymbolDesc  `json:"symbols"`
	MinZoom       int                    `json:"minZoom"`
	MaxZoom       int                    `json:"maxZoom"`
	RefTileSizePx float64                `json:"refTileSizePx"`
}

// Execute reads a placement request and prints the per-zoom pin-point
// lists it computes.
func (c *pinsCmd) Execute(_ []string) error {
	raw, err := os.ReadFile(c.Args.Input)
	if err != nil {
		return err
	}

	var in pinsInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}

	levels := pinpoint.ComputePinPoints(in.Path, in.LeftPadPx, in.RightPadPx, in.Symbols, in.MinZoom, in.MaxZoom, in.RefTileSizePx)

	var out []byte
	switch c.Format {
	case "yaml":
		out, err = yaml.Marshal(levels)
	default:
		out, err = json.MarshalIndent(levels, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
