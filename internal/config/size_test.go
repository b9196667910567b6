package config

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    Size
		wantErr bool
	}{
		{"56", 56, false},
		{"0", 0, false},
		{"1KB", 1000, false},
		{"1KiB", 1024, false},
		{" 2 KiB ", 2048, false},
		{"", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestSize_String(t *testing.T) {
	tests := []struct {
		size Size
		want string
	}{
		{56, "56 B"},
		{1024, "1.0 KiB"},
		{-1, "-1 B"},
	}
	for _, tt := range tests {
		if got := tt.size.String(); got != tt.want {
			t.Errorf("Size(%d).String() = %q, want %q", int64(tt.size), got, tt.want)
		}
	}
}
