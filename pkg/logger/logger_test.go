package logger_test

import (
	"context"
	"testing"

	"github.com/okian/decoy/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "hello", logger.String("k", "v"), logger.Int("n", 1))
			}, ShouldNotPanic)
		})

		Convey("Then Named returns a scoped logger", func() {
			l := logger.Named("catalog")
			So(l, ShouldNotBeNil)
			So(func() { l.Debug(context.Background(), "scoped") }, ShouldNotPanic)
		})

		Convey("When setting the level from a string", func() {
			Convey("Then known levels parse", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				So(logger.SetLevelString("WARN"), ShouldBeNil)
				So(logger.SetLevelString("warning"), ShouldBeNil)
				So(logger.SetLevelString("error"), ShouldBeNil)
				So(logger.SetLevelString(""), ShouldBeNil)
			})

			Convey("Then unknown levels fail", func() {
				So(logger.SetLevelString("loud"), ShouldNotBeNil)
			})
		})

		Convey("Then Sync never fails", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}
