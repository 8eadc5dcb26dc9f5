package outwriter

import (
	"testing"

	"github.com/parityci/dpc/internal/contract"
)

func TestGetMaxTableValueWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		expected int
	}{
		{
			name:     "narrow terminal clamps to minimum",
			width:    40,
			expected: 15,
		},
		{
			name:     "just below the reservation clamps to minimum",
			width:    64,
			expected: 15,
		},
		{
			name:     "mid-size terminal leaves the remainder",
			width:    100,
			expected: 50,
		},
		{
			name:     "wide terminal caps at maximum",
			width:    120,
			expected: 70,
		},
		{
			name:     "very wide terminal still caps at maximum",
			width:    300,
			expected: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			result := GetMaxTableValueWidth(cfg)
			if result != tt.expected {
				t.Errorf("GetMaxTableValueWidth() = %d, expected %d", result, tt.expected)
			}
		})
	}
}

func TestNewOutWriter(t *testing.T) {
	ow := NewOutWriter()
	if ow == nil {
		t.Fatal("NewOutWriter() returned nil")
	}
}
