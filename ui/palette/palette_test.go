package palette

import (
	"image/color"
	"reflect"
	"testing"
)

func TestRGBA(t *testing.T) {
	cases := map[string]color.RGBA{
		"#1f6feb": {0x1f, 0x6f, 0xeb, 0xff},
		"#000000": {0, 0, 0, 0xff},
		"#ffffff": {0xff, 0xff, 0xff, 0xff},
		"1f6feb":  {0, 0, 0, 0xff},
		"#zzzzzz": {0, 0, 0, 0xff},
		"#fff":    {0, 0, 0, 0xff},
	}
	for in, want := range cases {
		if got := RGBA(in); got != want {
			t.Fatalf("RGBA(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPalettesAreComplete(t *testing.T) {
	for name, p := range map[string]Palette{"light": Light, "dark": Dark} {
		v := reflect.ValueOf(p)
		for i := 0; i < v.NumField(); i++ {
			s := v.Field(i).String()
			if len(s) != 7 || s[0] != '#' {
				t.Fatalf("%s.%s = %q is not #rrggbb", name, v.Type().Field(i).Name, s)
			}
		}
	}
}

func TestStylesFollowPalette(t *testing.T) {
	cs := Dark.CanvasStyle()
	if cs.Background != RGBA(Dark.Canvas) || cs.Box != RGBA(Dark.Accent) || cs.Draft != RGBA(Dark.Draft) {
		t.Fatalf("canvas style does not follow the palette: %+v", cs)
	}
	ss := Light.SliderStyle()
	if ss.Fill != RGBA(Light.Primary) || ss.Track != RGBA(Light.Track) {
		t.Fatalf("slider style does not follow the palette: %+v", ss)
	}
	if Light.CanvasStyle() == Dark.CanvasStyle() {
		t.Fatalf("light and dark canvas styles should differ")
	}
}
