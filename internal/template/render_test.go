package template

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	keys := Keys("space", "escape", "t")

	tests := []struct {
		name string
		text string
		vars map[string]string
		want string
	}{
		{
			name: "no placeholders",
			text: "Waiting for scanner ...",
			vars: keys,
			want: "Waiting for scanner ...",
		},
		{
			name: "single key",
			text: "(Press {{attention_key}} to continue)",
			vars: keys,
			want: "(Press space to continue)",
		},
		{
			name: "repeated and mixed",
			text: "press {{attention_key}}.\n\n(Press {{attention_key}}, or {{escape_key}} to quit)",
			vars: keys,
			want: "press space.\n\n(Press space, or escape to quit)",
		},
		{
			name: "unknown placeholder kept",
			text: "Hello {{participant}}",
			vars: keys,
			want: "Hello {{participant}}",
		},
		{
			name: "nil vars",
			text: "(Press {{attention_key}})",
			vars: nil,
			want: "(Press {{attention_key}})",
		},
		{
			name: "invalid name not replaced",
			text: "{{attention-key}} {{1key}}",
			vars: map[string]string{"attention-key": "x", "1key": "y"},
			want: "{{attention-key}} {{1key}}",
		},
		{
			name: "triple braces",
			text: "{{{sync_key}}}",
			vars: keys,
			want: "{t}",
		},
		{
			name: "empty value",
			text: "[{{sync_key}}]",
			vars: map[string]string{SyncKey: ""},
			want: "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.text, tt.vars); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnknown(t *testing.T) {
	keys := Keys("space", "escape", "t")

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "(Press {{attention_key}})", nil},
		{"one", "{{sync_key}} {{attention}}", []string{"attention"}},
		{"sorted and unique", "{{zeta}} {{alpha}} {{zeta}}", []string{"alpha", "zeta"}},
		{"no placeholders", "plain text", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unknown(tt.text, keys); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unknown() = %v, want %v", got, tt.want)
			}
		})
	}
}
