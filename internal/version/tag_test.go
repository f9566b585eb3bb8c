package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_Numeric(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.6.0", "2.6.0"},
		{"1.8.0~beta1", "1.8.0"},
		{"1.9.0beta1", "1.9.0"},
		{"2.6.0-beta", "2.6.0"},
		{"v2.4.1", "2.4.1"},
		{"1.11", "1.11"},
		{"01.007.0", "1.7.0"},
		{"", ""},
		{"garbage", ""},
		{" 2.5.9 ", "2.5.9"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in).Numeric())
		})
	}
}

func TestTag_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.7.5", "1.8.0", -1},
		{"1.8.0~beta2", "1.8.0", 0},
		{"2.6.0-beta", "2.6.0", 0},
		{"2.5.9", "2.6.0", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.11", "1.11.0", 0},
		{"", "0.0.1", -1},
		{"", "", 0},
		{"2.6.0.1", "2.6.0", 0},
		{"3", "2.99.99", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.a).Compare(Parse(tt.b)))
		})
	}
}

func TestTag_HasPrefix(t *testing.T) {
	tag := Parse("1.8.0~beta1")
	assert.True(t, tag.HasPrefix("1.8"))
	assert.True(t, tag.HasPrefix("1.9", "1.8.0~beta"))
	assert.False(t, tag.HasPrefix("1.9", "1.10"))
	assert.Equal(t, "1.8.0~beta1", tag.Raw())
}

func TestTag_LessAtLeast(t *testing.T) {
	assert.True(t, Parse("2.3.9").Less(Parse("2.4.0")))
	assert.False(t, Parse("2.4.0").Less(Parse("2.4.0")))
	assert.True(t, Parse("2.6.0").AtLeast(Parse("2.6.0")))
	assert.False(t, Parse("").AtLeast(Parse("2.6.0")))
	assert.True(t, Parse("").IsZero())
}
