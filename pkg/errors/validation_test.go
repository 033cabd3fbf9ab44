package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "data/roads.shp", false},
		{"absolute", "/tmp/out.tif", false},
		{"vsi", "/vsizip/archive.zip/layer.shp", false},

		{"empty", "", true},
		{"null byte", "out\x00.tif", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath("source", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCreationOption(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"COMPRESS=DEFLATE", false},
		{"TILED=YES", false},
		{"BLOCKXSIZE=", false},

		{"COMPRESS", true},
		{"=DEFLATE", true},
		{"BAD KEY=1", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateCreationOption(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCreationOption(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
