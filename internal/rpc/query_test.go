package rpc

import "testing"

func TestEDNString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"line\nbreak", `"line\nbreak"`},
		{"", `""`},
	}
	for _, tt := range tests {
		if got := EDNString(tt.in); got != tt.want {
			t.Errorf("EDNString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestEDNLiteral(t *testing.T) {
	if got := EDNLiteral(42); got != "42" {
		t.Errorf("int = %s", got)
	}
	if got := EDNLiteral(true); got != "true" {
		t.Errorf("bool = %s", got)
	}
	if got := EDNLiteral(nil); got != "nil" {
		t.Errorf("nil = %s", got)
	}
}

func TestQueryArgs(t *testing.T) {
	q := Query{Template: "[:find ?p :in $ ?t]", Inputs: []any{"a"}}
	args := q.Args()
	if len(args) != 2 {
		t.Fatalf("len(args) = %d", len(args))
	}
	if args[0] != q.Template || args[1] != `"a"` {
		t.Errorf("args = %v", args)
	}
}
