package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReleaseVersionCompare(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "equal", a: "1.2.3", b: "1.2.3", want: 0},
		{name: "major wins", a: "2.0.0", b: "1.9.9", want: 1},
		{name: "minor wins", a: "1.3.0", b: "1.2.9", want: 1},
		{name: "patch wins", a: "1.2.4", b: "1.2.5", want: -1},
		{name: "numeric not lexicographic", a: "1.10.0", b: "1.2.0", want: 1},
		{name: "unparsable falls back to string order", a: "1.2", b: "1.10", want: 1},
		{name: "prerelease suffix falls back to string order", a: "1.2.3-beta", b: "1.2.3", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ReleaseVersion{Version: tt.a}
			b := ReleaseVersion{Version: tt.b}
			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
		})
	}
}

func TestReleaseVersionString(t *testing.T) {
	assert.Equal(t, "0.153.0", ReleaseVersion{Version: "0.153.0", URL: "https://example.com"}.String())
}
