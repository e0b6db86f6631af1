package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: "5", want: 5},
		{raw: " 3 ", want: 3},
		{raw: "4.0", want: 4},
		{raw: "0", wantErr: true},
		{raw: "6", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "4.5", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "five", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseValue(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 4.0, Average([]Rating{{Value: 3}, {Value: 5}}))
	assert.InDelta(t, 3.3333, Average([]Rating{{Value: 1}, {Value: 4}, {Value: 5}}), 0.001)
}
