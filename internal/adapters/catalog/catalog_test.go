package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/toolboard/internal/adapters/catalog"
	"github.com/okian/toolboard/internal/domain/compare"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadTools(t *testing.T) {
	Convey("Given the embedded catalog", t, func() {
		c, err := catalog.LoadTools("")

		Convey("Then it should load and index every tool", func() {
			So(err, ShouldBeNil)
			So(c.Len(), ShouldBeGreaterThan, 0)
			jasper, ok := c.Get("jasper")
			So(ok, ShouldBeTrue)
			So(jasper.Category, ShouldEqual, "Writing")
			So(*jasper.Metrics.Quality, ShouldEqual, 84.0)
			So(c.Categories(), ShouldResemble, []string{"Image", "SEO", "Writing"})
			So(c.HasCategory("SEO"), ShouldBeTrue)
			So(c.HasCategory("Audio"), ShouldBeFalse)
		})

		Convey("And missing metrics stay nil", func() {
			writesonic, ok := c.Get("writesonic")
			So(ok, ShouldBeTrue)
			So(writesonic.Metrics.Experience, ShouldBeNil)
		})
	})

	Convey("Given a catalog file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "tools.yaml")
		content := `
tools:
  - slug: " Alpha "
    category: Writing
    metrics: {value: 10}
`
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			c, err := catalog.LoadTools(path)

			Convey("Then slugs are normalized and names default to the slug", func() {
				So(err, ShouldBeNil)
				alpha, ok := c.Get("alpha")
				So(ok, ShouldBeTrue)
				So(alpha.Name, ShouldEqual, "alpha")
			})
		})
	})

	Convey("Given invalid catalogs", t, func() {
		Convey("When two tools share a slug", func() {
			_, err := catalog.ParseTools([]byte("tools:\n  - slug: a\n  - slug: A\n"))

			Convey("Then loading fails with ErrDuplicateSlug", func() {
				So(errors.Is(err, catalog.ErrDuplicateSlug), ShouldBeTrue)
			})
		})

		Convey("When a tool has no slug", func() {
			_, err := catalog.ParseTools([]byte("tools:\n  - name: Nameless\n"))

			Convey("Then loading fails with ErrMissingSlug", func() {
				So(errors.Is(err, catalog.ErrMissingSlug), ShouldBeTrue)
			})
		})

		Convey("When the document has unknown fields", func() {
			_, err := catalog.ParseTools([]byte("tools:\n  - slug: a\n    metricz: {}\n"))

			Convey("Then loading fails with ErrDecode", func() {
				So(errors.Is(err, catalog.ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := catalog.LoadTools("/non/existent/tools.yaml")

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given an empty document", t, func() {
		c, err := catalog.ParseTools(nil)

		Convey("Then the catalog is empty", func() {
			So(err, ShouldBeNil)
			So(c.Len(), ShouldEqual, 0)
		})
	})
}

func TestLoadComparisons(t *testing.T) {
	Convey("Given the embedded comparison registry", t, func() {
		entries, err := catalog.LoadComparisons("")

		Convey("Then it should build a registry without conflicts", func() {
			So(err, ShouldBeNil)
			So(len(entries), ShouldBeGreaterThan, 0)
			So(entries[0].Canonical, ShouldEqual, "jasper-vs-copyai")

			r, err := compare.NewRegistry(entries)
			So(err, ShouldBeNil)
			So(r.Conflicts(), ShouldBeEmpty)
			So(r.Resolve("surfer-vs-aiseo").Target, ShouldEqual, "aiseo-vs-surfer")
		})
	})

	Convey("Given every canonical comparison", t, func() {
		entries, _ := catalog.LoadComparisons("")
		tools, _ := catalog.LoadTools("")

		Convey("Then both tools exist in the catalog", func() {
			for _, e := range entries {
				left, right := e.Tools()
				_, okLeft := tools.Get(left)
				_, okRight := tools.Get(right)
				So(okLeft, ShouldBeTrue)
				So(okRight, ShouldBeTrue)
			}
		})
	})
}
