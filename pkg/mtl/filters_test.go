package mtl

import (
	"reflect"
	"testing"
)

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		arg    string
		hasArg bool
		values []string
		want   []string
	}{
		{"lower", "lower", "", false, []string{"ÄBC", "Def"}, []string{"äbc", "def"}},
		{"upper", "upper", "", false, []string{"mixed Case ä"}, []string{"MIXED CASE Ä"}},
		{"titlecase", "titlecase", "", false, []string{"warm lights (ft. apoxode)"}, []string{"Warm Lights (Ft. Apoxode)"}},
		{"capitalize", "capitalize", "", false, []string{"WARM LIGHTS (FT. APOXODE)", ""}, []string{"Warm lights (ft. apoxode)", ""}},
		{"shell quote plain", "shell_quote", "", false, []string{"plain"}, []string{"plain"}},
		{"shell quote apostrophe", "shell_quote", "", false, []string{"it's here"}, []string{`'it'\''s here'`}},
		{"split", "split", ";", true, []string{"a;b", "c"}, []string{"a", "b", "c"}},
		{"autosplit", "autosplit", "", false, []string{"a,b; c  d"}, []string{"a", "b", "c", "d"}},
		{"chop past length", "chop", "5", true, []string{"abc"}, []string{""}},
		{"chop zero", "chop", "0", true, []string{"abc"}, []string{"abc"}},
		{"chomp", "chomp", "1", true, []string{"äbc"}, []string{"bc"}},
		{"join default", "join", "", false, []string{"a", "b"}, []string{"ab"}},
		{"join empty list", "join", ",", true, nil, []string{""}},
		{"uniq keeps order", "uniq", "", false, []string{"b", "a", "b"}, []string{"b", "a"}},
		{"slice negative start", "slice", "-2:", true, []string{"a", "b", "c"}, []string{"b", "c"}},
		{"slice out of range", "slice", "5:9", true, []string{"a", "b"}, []string{}},
		{"slice negative step bounds", "slice", "1::-1", true, []string{"a", "b", "c"}, []string{"b", "a"}},
		{"sslice unicode", "sslice", "::-1", true, []string{"aäb"}, []string{"bäa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyFilter(tt.filter, tt.arg, tt.hasArg, tt.values, nil)
			if err != nil {
				t.Fatalf("applyFilter(%s) error = %v", tt.filter, err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("applyFilter(%s) = %q, want %q", tt.filter, got, tt.want)
			}
		})
	}
}

func TestApplyFilter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		arg    string
		hasArg bool
	}{
		{"missing argument", "split", "", false},
		{"empty argument", "append", "", true},
		{"bad chop", "chop", "x", true},
		{"bad chomp", "chomp", "1.5", true},
		{"bad slice", "slice", "a:b", true},
		{"too many slice parts", "slice", "1:2:3:4", true},
		{"zero step", "sslice", "::0", true},
		{"unexpected argument", "sort", "x", true},
		{"unknown", "nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := applyFilter(tt.filter, tt.arg, tt.hasArg, []string{"abc"}, nil)
			if !IsSyntaxError(err) {
				t.Errorf("applyFilter(%s) error = %v, want SyntaxError", tt.filter, err)
			}
		})
	}
}

func TestApplyFilter_DoesNotMutateInput(t *testing.T) {
	values := []string{"c", "a", "b"}
	for _, name := range []string{"sort", "rsort", "reverse", "append"} {
		if _, err := applyFilter(name, "x", name == "append", values, nil); err != nil {
			t.Fatal(err)
		}
	}
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(values, want) {
		t.Errorf("input modified to %q", values)
	}
}

func TestSliceSpecIndices(t *testing.T) {
	ip := func(i int) *int { return &i }
	tests := []struct {
		spec   sliceSpec
		length int
		want   []int
	}{
		{sliceSpec{}, 3, []int{0, 1, 2}},
		{sliceSpec{start: ip(1)}, 3, []int{1, 2}},
		{sliceSpec{stop: ip(-1)}, 3, []int{0, 1}},
		{sliceSpec{step: ip(-1)}, 3, []int{2, 1, 0}},
		{sliceSpec{start: ip(-10), stop: ip(10)}, 3, []int{0, 1, 2}},
		{sliceSpec{start: ip(10), step: ip(-2)}, 5, []int{4, 2, 0}},
		{sliceSpec{}, 0, nil},
	}
	for _, tt := range tests {
		got := tt.spec.indices(tt.length)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("indices(%d) = %v, want %v", tt.length, got, tt.want)
		}
	}
}

func TestFilterHelp(t *testing.T) {
	help := FilterHelp()
	if len(help) != len(builtinFilters()) {
		t.Fatalf("FilterHelp() has %d entries, want %d", len(help), len(builtinFilters()))
	}
	if help[0].Name != "lower" {
		t.Errorf("first entry = %q, want lower", help[0].Name)
	}
	for _, h := range help {
		if h.Description == "" {
			t.Errorf("filter %s has no description", h.Name)
		}
	}
}
