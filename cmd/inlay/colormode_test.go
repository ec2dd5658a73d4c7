package main

import "testing"

func TestReadColorMode(t *testing.T) {
	cases := []struct {
		input string
		want  colorMode
		ok    bool
	}{
		{"auto", colorModeAuto, true},
		{"", colorModeAuto, true},
		{"on", colorModeOn, true},
		{"OFF", colorModeOff, true},
		{" on ", colorModeOn, true},
		{"always", "", false},
	}
	for _, tc := range cases {
		got, err := readColorMode(tc.input)
		if tc.ok && err != nil {
			t.Errorf("readColorMode(%q) error: %v", tc.input, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("readColorMode(%q) accepted an invalid mode", tc.input)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("readColorMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestShouldColorRespectsExplicitModes(t *testing.T) {
	if !shouldColor(colorModeOn) {
		t.Error("on must force color even without a terminal")
	}
	if shouldColor(colorModeOff) {
		t.Error("off must suppress color unconditionally")
	}
}
