package devserver_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/soocke/frame-annotator/backend"
	"github.com/soocke/frame-annotator/devserver"
	"github.com/soocke/frame-annotator/domain/annotation"
	"github.com/soocke/frame-annotator/domain/geom"
)

func writePNG(path string, w, h int, c color.Color) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()
	Expect(png.Encode(f, img)).To(Succeed())
}

var _ = Describe("Server", func() {
	var (
		dataDir string
		ts      *httptest.Server
		client  *backend.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		dataDir, err = os.MkdirTemp("", "devserver-test-*")
		Expect(err).NotTo(HaveOccurred())

		// "a.mp4" is a folder of ten frames; frame i is i+1 pixels wide.
		clip := filepath.Join(dataDir, "a.mp4")
		Expect(os.Mkdir(clip, 0o755)).To(Succeed())
		for i := 0; i < 10; i++ {
			writePNG(filepath.Join(clip, fmt.Sprintf("frame_%03d.png", i)), i+1, 4, color.White)
		}
		writePNG(filepath.Join(dataDir, "still.png"), 8, 6, color.Black)
		Expect(os.WriteFile(filepath.Join(dataDir, "raw.mp4"), []byte("not decoded"), 0o644)).To(Succeed())

		logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		srv := devserver.New(&devserver.Config{Addr: ":0", DataDir: dataDir}, logger)
		ts = httptest.NewServer(srv.Handler())
		client, err = backend.NewClient(ts.URL, 5*time.Second, logger)
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		ts.Close()
		os.RemoveAll(dataDir)
	})

	Context("when selecting a video", func() {
		It("should report the frame count", func() {
			setup, err := client.SetupVideo(ctx, "a.mp4")
			Expect(err).NotTo(HaveOccurred())
			Expect(setup.TotalFrames).To(Equal(10))
			Expect(setup.Rectangles).To(BeEmpty())
		})

		It("should reject unknown names and raw video files", func() {
			_, err := client.SetupVideo(ctx, "missing")
			Expect(errors.Is(err, annotation.ErrLoadFailure)).To(BeTrue())

			_, err = client.SetupVideo(ctx, "raw.mp4")
			Expect(errors.Is(err, annotation.ErrLoadFailure)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("not supported"))
		})
	})

	Context("when moving the frame cursor", func() {
		BeforeEach(func() {
			_, err := client.SetupVideo(ctx, "a.mp4")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should serve the selected frame", func() {
			Expect(client.SetFrameNumber(ctx, 3)).To(Succeed())
			data, err := client.CurrentImage(ctx)
			Expect(err).NotTo(HaveOccurred())
			img, err := backend.Decode(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(4))
		})

		It("should refuse frames out of range", func() {
			err := client.SetFrameNumber(ctx, 10)
			Expect(errors.Is(err, annotation.ErrLoadFailure)).To(BeTrue())
		})
	})

	Context("when saving rectangles", func() {
		BeforeEach(func() {
			_, err := client.SetupVideo(ctx, "a.mp4")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return them on the next selection", func() {
			store := annotation.NewStore()
			id, ok := store.AddRectangle(3, geom.Pt(10, 10), geom.Pt(50, 50), geom.Sz(100, 100))
			Expect(ok).To(BeTrue())

			res, err := store.SaveFrame(ctx, 3, client)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Saved).To(ConsistOf(id))
			Expect(store.Dirty(3)).To(BeFalse())

			setup, err := client.SetupVideo(ctx, "a.mp4")
			Expect(err).NotTo(HaveOccurred())
			Expect(setup.Rectangles).To(HaveKey(3))
			Expect(setup.Rectangles).NotTo(HaveKey(0))
			Expect(setup.Rectangles[3][id].Center.Eq(geom.Pt(0.3, 0.3), 1e-9)).To(BeTrue())
		})

		It("should report invalid rectangles by id", func() {
			rects := annotation.Rectangles{
				"good": {Center: geom.Pt(0.5, 0.5), Size: geom.Sz(0.2, 0.2)},
				"bad":  {Center: geom.Pt(0.5, 0.5), Size: geom.Sz(0, 0.2)},
			}
			_, err := annotation.Save(ctx, client, 1, rects)
			var serr *annotation.SaveError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Failed).To(Equal([]string{"bad"}))
		})
	})

	Context("when browsing the image gallery", func() {
		It("should list and serve top-level images", func() {
			names, err := client.ListImages(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"still.png"}))

			data, err := client.Image(ctx, "still.png")
			Expect(err).NotTo(HaveOccurred())
			img, err := backend.Decode(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Size()).To(Equal(image.Pt(8, 6)))
		})

		It("should not serve files outside the gallery", func() {
			_, err := client.Image(ctx, "raw.mp4")
			Expect(errors.Is(err, annotation.ErrNetwork)).To(BeTrue())
		})
	})
})
