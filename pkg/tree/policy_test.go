package tree

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ExpansionPolicy
		wantErr bool
	}{
		{"", ExpandAll(), false},
		{"all", ExpandAll(), false},
		{"TRUE", ExpandAll(), false},
		{"none", ExpandNone(), false},
		{"false", ExpandNone(), false},
		{"src", ExpandIDs("src"), false},
		{"src, components ,", ExpandIDs("src", "components"), false},
		{" , ", ExpansionPolicy{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePolicy(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestPolicyResolve(t *testing.T) {
	forest := BuildTree(animals())

	if got := ExpandNone().Resolve(forest); len(got) != 0 || got == nil {
		t.Errorf("none should resolve to an empty, non-nil set, got %#v", got)
	}
	if got := ExpandAll().Resolve(forest); !reflect.DeepEqual(got, CollectAllIDs(forest)) {
		t.Errorf("all resolved to %v", got)
	}
	var zero ExpansionPolicy
	if got := zero.Resolve(forest); len(got) != CountNodes(forest) {
		t.Errorf("zero policy should expand all, got %v", got)
	}
	if got := ExpandIDs("5", "zzz", "5").Resolve(forest); !reflect.DeepEqual(got, []string{"5", "zzz"}) {
		t.Errorf("explicit list resolved to %v, want [5 zzz]", got)
	}
}

func TestPolicyYAML(t *testing.T) {
	var cfg struct {
		A ExpansionPolicy `yaml:"a"`
		B ExpansionPolicy `yaml:"b"`
		C ExpansionPolicy `yaml:"c"`
		D ExpansionPolicy `yaml:"d"`
	}
	doc := "a: true\nb: false\nc: [src, docs]\nd: none\n"
	if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.A.Kind != PolicyAll {
		t.Errorf("a = %+v, want all", cfg.A)
	}
	if cfg.B.Kind != PolicyNone {
		t.Errorf("b = %+v, want none", cfg.B)
	}
	if !reflect.DeepEqual(cfg.C, ExpandIDs("src", "docs")) {
		t.Errorf("c = %+v, want [src docs]", cfg.C)
	}
	if cfg.D.Kind != PolicyNone {
		t.Errorf("d = %+v, want none", cfg.D)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "a: true\nb: false\nc:\n    - src\n    - docs\nd: false\n"
	if string(out) != want {
		t.Errorf("marshal =\n%s\nwant\n%s", out, want)
	}
}

func TestPolicyYAMLRejectsMapping(t *testing.T) {
	var cfg struct {
		P ExpansionPolicy `yaml:"p"`
	}
	if err := yaml.Unmarshal([]byte("p: {x: 1}\n"), &cfg); err == nil {
		t.Error("expected error for mapping policy")
	}
}
