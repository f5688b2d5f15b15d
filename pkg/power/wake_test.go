package power_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/degu.go/pkg/power"
)

func TestParseWakeSources(t *testing.T) {
	cases := []struct {
		name    string
		in      interface{}
		out     []power.WakeSource
		fail    bool
		errElem int
	}{
		{name: "none", in: nil},
		{name: "empty", in: []interface{}{}},
		{
			name: "pair",
			in:   []interface{}{"GPIO_0", 13},
			out:  []power.WakeSource{{Controller: "GPIO_0", Pin: 13}},
		},
		{
			name: "fixed pair",
			in:   [2]interface{}{"GPIO_1", float64(2)},
			out:  []power.WakeSource{{Controller: "GPIO_1", Pin: 2}},
		},
		{
			name: "list",
			in: []interface{}{
				[]interface{}{"GPIO_0", 13},
				[]interface{}{"GPIO_1", json.Number("7")},
			},
			out: []power.WakeSource{
				{Controller: "GPIO_0", Pin: 13},
				{Controller: "GPIO_1", Pin: 7},
			},
		},
		{name: "bad type", fail: true, in: "GPIO_0", errElem: -1},
		{name: "short pair", fail: true, in: []interface{}{"GPIO_0"}, errElem: -1},
		{name: "bad pin", fail: true, in: []interface{}{"GPIO_0", "13"}, errElem: -1},
		{name: "fraction pin", fail: true, in: []interface{}{"GPIO_0", 1.5}, errElem: -1},
		{name: "pin range", fail: true, in: []interface{}{"GPIO_0", 256}, errElem: -1},
		{
			name: "malformed element",
			fail: true,
			in: []interface{}{
				[]interface{}{"GPIO_0", 13},
				"GPIO_1",
			},
			errElem: 1,
		},
		{
			name: "negative pin element",
			fail: true,
			in: []interface{}{
				[]interface{}{"GPIO_0", -1},
			},
			errElem: 0,
		},
	}
	for _, c := range cases {
		out, err := power.ParseWakeSources(c.in)
		if !c.fail {
			require.NoError(t, err, c.name)
			require.Equal(t, c.out, out, c.name)
			continue
		}
		require.Nil(t, out, c.name)
		shapeErr, ok := err.(*power.ShapeError)
		require.True(t, ok, c.name)
		require.Equal(t, c.errElem, shapeErr.Index, c.name)
	}
}

func TestUnmarshalWakeSources(t *testing.T) {
	sources, err := power.UnmarshalWakeSources([]byte(`[["GPIO_0", 13], ["GPIO_1", 2]]`))
	require.NoError(t, err)
	require.Len(t, sources, 2)
	sources, err = power.UnmarshalWakeSources([]byte(`["GPIO_0", 13]`))
	require.NoError(t, err)
	require.Equal(t, []power.WakeSource{{Controller: "GPIO_0", Pin: 13}}, sources)
	_, err = power.UnmarshalWakeSources([]byte(`[["GPIO_0", 13], 5]`))
	require.Equal(t, &power.ShapeError{Index: 1}, err)
	_, err = power.UnmarshalWakeSources([]byte(`{`))
	require.Error(t, err)
}
