package presenter

import (
	"image"
	"log/slog"

	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/navigation"
	"github.com/soocke/frame-annotator/domain/viewport"
	"github.com/soocke/frame-annotator/ui/images"
	"github.com/soocke/frame-annotator/ui/model"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type savedSnapshot struct {
	frame int
	rects annotation.Rectangles
}

type prefetch struct {
	video string
	frame int
}

type mockRequester struct {
	setups     []navigation.SetupRequest
	frames     []navigation.FrameRequest
	images     []string
	prefetches []prefetch
	saves      []savedSnapshot
	tracks     []trackCall
}

type trackCall struct {
	req   navigation.FrameRequest
	from  int
	rects annotation.Rectangles
	cur   image.Image
}

func (m *mockRequester) Setup(req navigation.SetupRequest) { m.setups = append(m.setups, req) }
func (m *mockRequester) Frame(req navigation.FrameRequest, image string) {
	m.frames = append(m.frames, req)
	m.images = append(m.images, image)
}
func (m *mockRequester) Prefetch(video string, n int) {
	m.prefetches = append(m.prefetches, prefetch{video, n})
}
func (m *mockRequester) Save(frame int, rects annotation.Rectangles) {
	m.saves = append(m.saves, savedSnapshot{frame, rects})
}

func (m *mockRequester) Track(req navigation.FrameRequest, from int, rects annotation.Rectangles, cur image.Image) {
	m.tracks = append(m.tracks, trackCall{req, from, rects, cur})
}

func (m *mockRequester) lastFrame() navigation.FrameRequest { return m.frames[len(m.frames)-1] }

type mockNavView struct {
	videos   []string
	selected string
	value    int
	max      int
	label    string
}

func (v *mockNavView) SetVideos(names []string)     { v.videos = names }
func (v *mockNavView) SetSelectedVideo(name string) { v.selected = name }
func (v *mockNavView) SetSlider(value, max int)     { v.value, v.max = value, max }
func (v *mockNavView) SetFrameLabel(text string)    { v.label = text }

type mockAlerter struct{ titles, messages []string }

func (a *mockAlerter) Alert(title, message string) {
	a.titles = append(a.titles, title)
	a.messages = append(a.messages, message)
}

type mockCanvasView struct {
	shown int
	last  image.Image
}

func (v *mockCanvasView) ShowCanvas(img image.Image) { v.shown++; v.last = img }

type mockDrawView struct{ on bool }

func (v *mockDrawView) SetDrawMode(on bool) { v.on = on }

type mockListView struct {
	calls int
	rows  []RectRow
}

func (v *mockListView) SetRows(rows []RectRow) { v.calls++; v.rows = rows }

type mockStatusView struct {
	calls int
	text  string
}

func (v *mockStatusView) SetStatus(text string) { v.calls++; v.text = text }

// fixture bundles a session with every presenter wired to mocks. The canvas
// and frames are 100x100 so screen and image coordinates coincide at
// scale 1.
type fixture struct {
	sess   *model.Session
	req    *mockRequester
	nav    *NavigationPresenter
	navV   *mockNavView
	canvas *CanvasPresenter
	canV   *mockCanvasView
	drawV  *mockDrawView
	ann    *AnnotationPresenter
	list   *mockListView
	alert  *mockAlerter
}

func newFixture() *fixture {
	f := &fixture{
		sess:  model.NewSession(100, 100, viewport.Options{}, discardLogger),
		req:   &mockRequester{},
		navV:  &mockNavView{},
		canV:  &mockCanvasView{},
		drawV: &mockDrawView{},
		list:  &mockListView{},
		alert: &mockAlerter{},
	}
	f.nav = NewNavigationPresenter(f.sess, f.req, f.navV, f.alert, discardLogger)
	f.canvas = NewCanvasPresenter(f.sess, f.canV, f.drawV, images.DefaultStyle(), discardLogger)
	f.ann = NewAnnotationPresenter(f.sess, f.req, f.list, f.alert, discardLogger)
	return f
}

func testFrame(w, h int) image.Image { return image.NewRGBA(image.Rect(0, 0, w, h)) }
