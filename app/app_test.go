package app

import "testing"

func TestCenteredGeometry(t *testing.T) {
	cases := []struct {
		w, h, sw, sh int
		want         string
	}{
		{1260, 730, 1920, 1080, "1260x730+330+175"},
		{1260, 730, 0, 0, "1260x730+100+100"},
		{1260, 730, 1024, 768, "1260x730+100+100"},
	}
	for _, tc := range cases {
		if got := centeredGeometry(tc.w, tc.h, tc.sw, tc.sh); got != tc.want {
			t.Fatalf("centeredGeometry(%d,%d,%d,%d) = %q, want %q", tc.w, tc.h, tc.sw, tc.sh, got, tc.want)
		}
	}
}
