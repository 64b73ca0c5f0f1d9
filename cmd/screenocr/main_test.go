package main

import (
	"strings"
	"testing"
)

func TestPNGValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "ValidPNG",
			data:    []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00},
			wantErr: false,
		},
		{
			name:    "InvalidMagic",
			data:    []byte{0x00, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
			wantErr: true,
		},
		{
			name:    "TooShort",
			data:    []byte{0x89, 'P', 'N', 'G'},
			wantErr: true,
		},
		{
			name:    "Empty",
			data:    []byte{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePNG(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePNG() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeForLogging(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "PlainCode",
			text: "def main():",
			want: "def main():",
		},
		{
			name: "NewlinesAndTabs",
			text: "a\nb\tc",
			want: "a\\nb\\tc",
		},
		{
			name: "CarriageReturn",
			text: "a\r\nb",
			want: "a\\n\\nb",
		},
		{
			name: "ControlCharacters",
			text: "x\x01y\x7fz",
			want: "x?y?z",
		},
		{
			name: "Empty",
			text: "",
			want: "",
		},
		{
			name: "ExactlyAtLimit",
			text: strings.Repeat("b", 100),
			want: strings.Repeat("b", 100),
		},
		{
			name: "TruncatedOverLimit",
			text: strings.Repeat("a", 150),
			want: strings.Repeat("a", 100) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeForLogging(tt.text)
			if got != tt.want {
				t.Errorf("sanitizeForLogging() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRootCommandRejectsUnknownSubcommand(t *testing.T) {
	err := runWithArgs([]string{"screenocr", "definitely-not-a-command"})
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
}

func TestOCRCommandRequiresFileFlag(t *testing.T) {
	err := runWithArgs([]string{"screenocr", "ocr"})
	if err == nil || !strings.Contains(err.Error(), "file") {
		t.Fatalf("expected missing --file error, got %v", err)
	}
}
