package ycc_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/superloach/ycc/pkg/ycc"
)

type scenario struct {
	Name     string  `yaml:"name"`
	Source   string  `yaml:"source"`
	Want     string  `yaml:"want"`
	Type     string  `yaml:"type"`
	Output   *string `yaml:"output"`
	Input    string  `yaml:"input"`
	Error    string  `yaml:"error"`
	MaxDepth int     `yaml:"max_depth"`
}

var reasons = map[string]int{
	"lex":    ycc.ErrLex,
	"parse":  ycc.ErrParse,
	"name":   ycc.ErrName,
	"type":   ycc.ErrType,
	"range":  ycc.ErrRange,
	"system": ycc.ErrSystem,
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()

	f, err := os.Open("testdata/scenarios.yaml")
	require.NoError(t, err)
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var scenarios []scenario
	require.NoError(t, dec.Decode(&scenarios))
	require.NotEmpty(t, scenarios)
	return scenarios
}

// runSource loads, prepares and runs source, stopping at the first error.
func runSource(eng *ycc.Engine, source string) (ycc.Value, error) {
	ctx := eng.CreateContext()
	if err := ctx.LoadString("scenario", source); err != nil {
		return nil, err
	}
	prog, err := ctx.Prepare()
	if err != nil {
		return nil, err
	}
	return prog.Run()
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			var out bytes.Buffer
			eng := &ycc.Engine{
				MaxDepth: sc.MaxDepth,
				Stdout:   &out,
				Stdin:    strings.NewReader(sc.Input),
			}

			v, err := runSource(eng, sc.Source)
			if sc.Error != "" {
				want, ok := reasons[sc.Error]
				require.True(t, ok, "unknown error category %q", sc.Error)
				require.Error(t, err)
				assert.Equal(t, want, ycc.ReasonOf(err), "error: %s", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, sc.Want, v.String())
			if sc.Type != "" {
				assert.Equal(t, sc.Type, v.Type().String())
			}
			if sc.Output != nil {
				assert.Equal(t, *sc.Output, out.String())
			}
		})
	}
}
