package model_test

import (
	"math"
	"testing"
	"time"

	model "github.com/okian/tally/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCoerce(t *testing.T) {
	convey.Convey("Given raw count input", t, func() {
		cases := map[string]int{
			"":            0,
			"   ":         0,
			"abc":         0,
			"2":           2,
			" 7 ":         7,
			"-3":          0,
			"2.9":         2,
			"0.4":         0,
			"1e2":         100,
			"NaN":         0,
			"Inf":         0,
			"-Inf":        0,
			"3 apples":    0,
			"99999999999": math.MaxInt32,
		}

		for in, want := range cases {
			convey.So(model.Coerce(in), convey.ShouldEqual, want)
		}
	})
}

func TestFormCounts(t *testing.T) {
	convey.Convey("Given a form with malformed intakes", t, func() {
		f := model.Form{Intakes: "abc", Placements: "2"}

		convey.Convey("Then the malformed field becomes zero and the rest parse", func() {
			convey.So(f.Counts(), convey.ShouldResemble, model.Counts{Intakes: 0, Interviews: 0, Placements: 2, Prospects: 0})
		})
	})
}

func TestCounts(t *testing.T) {
	convey.Convey("Given two count sets", t, func() {
		a := model.Counts{Intakes: 1, Interviews: 2, Placements: 3, Prospects: 4}
		b := model.Counts{Intakes: 10, Interviews: 20, Placements: 30, Prospects: 40}

		convey.Convey("Then Add sums element-wise", func() {
			convey.So(a.Add(b), convey.ShouldResemble, model.Counts{Intakes: 11, Interviews: 22, Placements: 33, Prospects: 44})
		})

		convey.Convey("And IsZero only holds for the zero value", func() {
			convey.So(model.Counts{}.IsZero(), convey.ShouldBeTrue)
			convey.So(a.IsZero(), convey.ShouldBeFalse)
		})
	})
}

func TestEntryOrdering(t *testing.T) {
	convey.Convey("Given entries with creation timestamps", t, func() {
		t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		older := model.Entry{ID: "entry-1", CreatedAt: t0}
		newer := model.Entry{ID: "entry-2", CreatedAt: t0.Add(time.Minute)}
		twin := model.Entry{ID: "entry-3", CreatedAt: t0}

		convey.So(newer.Newer(older), convey.ShouldBeTrue)
		convey.So(older.Newer(newer), convey.ShouldBeFalse)
		convey.So(twin.Newer(older), convey.ShouldBeTrue)
		convey.So(older.Newer(twin), convey.ShouldBeFalse)
	})

	convey.Convey("Given an entry", t, func() {
		e := model.Entry{Intakes: 1, Interviews: 2, Placements: 3, Prospects: 4}
		convey.So(e.Counts(), convey.ShouldResemble, model.Counts{Intakes: 1, Interviews: 2, Placements: 3, Prospects: 4})
	})
}
