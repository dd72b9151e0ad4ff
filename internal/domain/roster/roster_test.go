package roster_test

import (
	"errors"
	"testing"

	"github.com/okian/tally/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRoster(t *testing.T) {
	Convey("Given a list of names with blanks and duplicates", t, func() {
		r, err := roster.New([]string{"Marcus", " Nick ", "", "Marcus", "Gea"})

		Convey("Then the roster keeps first-seen order without duplicates", func() {
			So(err, ShouldBeNil)
			So(r.Names(), ShouldResemble, []string{"Marcus", "Nick", "Gea"})
			So(r.Len(), ShouldEqual, 3)
			So(r.Index("Gea"), ShouldEqual, 2)
			So(r.Index("Yde"), ShouldEqual, -1)
		})

		Convey("And membership is exact", func() {
			So(r.Contains("Nick"), ShouldBeTrue)
			So(r.Contains("nick"), ShouldBeFalse)
		})

		Convey("And the returned names are a copy", func() {
			names := r.Names()
			names[0] = "Mallory"
			So(r.Names()[0], ShouldEqual, "Marcus")
			So(r.Contains("Mallory"), ShouldBeFalse)
		})
	})

	Convey("Given no usable names", t, func() {
		_, err := roster.New([]string{" ", ""})
		So(errors.Is(err, roster.ErrEmpty), ShouldBeTrue)
	})

	Convey("Given a comma separated list", t, func() {
		r, err := roster.Parse("Dion, Sander,Yde")
		So(err, ShouldBeNil)
		So(r.Names(), ShouldResemble, []string{"Dion", "Sander", "Yde"})
	})

	Convey("Given the default roster", t, func() {
		r, err := roster.New(roster.Default)
		So(err, ShouldBeNil)
		So(r.Len(), ShouldEqual, 7)
		So(r.Names()[0], ShouldEqual, "Marcus")
	})
}
