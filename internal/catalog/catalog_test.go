package catalog_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/decoy/internal/catalog"
	"github.com/okian/decoy/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalogLoading(t *testing.T) {
	Convey("Given a lab directory with one good, one invalid, and one missing lab", t, func() {
		ctx := context.Background()
		dir := filepath.Join("testdata", "labs")

		cat, err := catalog.New(ctx, catalog.WithDir(dir))

		Convey("Then loading succeeds and only the valid lab is kept", func() {
			So(err, ShouldBeNil)
			So(cat.Len(), ShouldEqual, 1)
		})

		Convey("Then Get returns the loaded definition", func() {
			So(err, ShouldBeNil)
			lab, err := cat.Get(ctx, "phishing-email-basic")
			So(err, ShouldBeNil)
			So(lab.Name, ShouldEqual, "Urgent KYC Email")
			So(lab.Traps, ShouldHaveLength, 2)
			So(lab.Traps[0].TriggerEvents[0].Fields["messageId"], ShouldEqual, "bank-kyc-phish")
			So(lab.Traps[1].Severity, ShouldEqual, -15)
		})

		Convey("Then Get on an unknown id fails with ErrNotFound", func() {
			So(err, ShouldBeNil)
			_, err := cat.Get(ctx, "no-such-lab")
			So(errors.Is(err, catalog.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then the skipped labs do not appear in listings", func() {
			So(err, ShouldBeNil)
			summaries := cat.List(ctx)
			So(summaries, ShouldHaveLength, 1)
			So(summaries[0].ID, ShouldEqual, "phishing-email-basic")
			So(summaries[0].TrapCount, ShouldEqual, 2)
			So(summaries[0].Difficulty, ShouldEqual, "beginner")
		})
	})

	Convey("Given no configured source", t, func() {
		_, err := catalog.New(context.Background())

		Convey("Then construction fails", func() {
			So(errors.Is(err, catalog.ErrNoSource), ShouldBeTrue)
		})
	})

	Convey("Given a nonexistent directory", t, func() {
		_, err := catalog.New(context.Background(), catalog.WithDir("testdata/nope"))

		Convey("Then construction fails on the index", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFromDefinitions(t *testing.T) {
	Convey("Given in-memory definitions", t, func() {
		ctx := context.Background()
		cat := catalog.FromDefinitions(
			model.LabDefinition{ID: "a", Name: "A", Type: "phishing-email"},
			model.LabDefinition{ID: "b", Name: "B", Type: "fake-storefront"},
		)

		Convey("Then lookups and listings work without a loader", func() {
			So(cat.Len(), ShouldEqual, 2)
			lab, err := cat.Get(ctx, "b")
			So(err, ShouldBeNil)
			So(lab.Name, ShouldEqual, "B")
			So(cat.List(ctx), ShouldHaveLength, 2)
			So(cat.List(ctx)[0].ID, ShouldEqual, "a")
		})
	})
}
