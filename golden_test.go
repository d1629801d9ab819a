package tinylisp_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	tinylisp "github.com/tinylisp/tinylisp"
)

// goldenCase mirrors the teacher's parse_test.go fixture-struct idiom: a
// small YAML-annotated struct loaded from testdata, one struct per case.
type goldenCase struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Want   string `yaml:"want"`
}

func loadGolden(t *testing.T) []goldenCase {
	t.Helper()
	raw, err := os.ReadFile("testdata/golden.yaml")
	require.NoError(t, err)

	var cases []goldenCase
	require.NoError(t, yaml.Unmarshal(raw, &cases))
	return cases
}

func TestGolden(t *testing.T) {
	t.Parallel()
	for _, tc := range loadGolden(t) {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			in := tinylisp.New()
			forms, err := tinylisp.Read(in, tc.Source)
			require.NoError(t, err)
			require.NotEmpty(t, forms)

			var last tinylisp.Value
			for _, form := range forms {
				last, err = tinylisp.Eval(in, form, in.Root)
				require.NoError(t, err)
			}

			p := &tinylisp.Printer{Heap: in.Heap}
			require.Equal(t, tc.Want, p.Sprint(last))
		})
	}
}
