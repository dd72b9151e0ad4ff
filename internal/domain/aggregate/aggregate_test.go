package aggregate_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/tally/internal/domain/aggregate"
	"github.com/okian/tally/internal/domain/calendar"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(name string, date time.Time, c model.Counts) model.Entry {
	p := calendar.Bucket(date)
	return model.Entry{
		ID: name + date.Format("20060102"), Name: name, Date: date,
		Week: p.Week, Month: p.Month, Year: p.Year,
		Intakes: c.Intakes, Interviews: c.Interviews, Placements: c.Placements, Prospects: c.Prospects,
	}
}

func TestParseMode(t *testing.T) {
	Convey("Given range query values", t, func() {
		for in, want := range map[string]aggregate.Mode{
			"":      aggregate.Week,
			"week":  aggregate.Week,
			"Month": aggregate.Month,
			"year":  aggregate.Year,
			"all":   aggregate.All,
		} {
			m, err := aggregate.ParseMode(in)
			So(err, ShouldBeNil)
			So(m, ShouldEqual, want)
		}

		_, err := aggregate.ParseMode("decade")
		So(errors.Is(err, aggregate.ErrUnknownMode), ShouldBeTrue)
	})
}

func TestCompute(t *testing.T) {
	Convey("Given a roster and entries across several periods", t, func() {
		r, err := roster.New([]string{"A", "B", "C"})
		So(err, ShouldBeNil)

		ref := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC) // ISO week 20
		sameWeek := time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)
		sameMonth := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
		sameYear := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
		lastYear := time.Date(2023, time.May, 15, 0, 0, 0, 0, time.UTC)

		entries := []model.Entry{
			entry("A", ref, model.Counts{Intakes: 1, Placements: 1}),
			entry("B", sameWeek, model.Counts{Interviews: 2}),
			entry("A", sameMonth, model.Counts{Intakes: 3}),
			entry("C", sameYear, model.Counts{Placements: 4}),
			entry("B", lastYear, model.Counts{Prospects: 5}),
			entry("Stranger", ref, model.Counts{Placements: 9}),
		}

		Convey("When computing the week window", func() {
			res := aggregate.Compute(r, entries, aggregate.NewWindow(aggregate.Week, ref), "")

			Convey("Then every roster member appears once in roster order", func() {
				So(len(res.PerConsultant), ShouldEqual, 3)
				So(res.PerConsultant[0].Name, ShouldEqual, "A")
				So(res.PerConsultant[1].Name, ShouldEqual, "B")
				So(res.PerConsultant[2].Name, ShouldEqual, "C")
				So(res.PerConsultant[2].Counts.IsZero(), ShouldBeTrue)
			})

			Convey("And only in-window counts are summed", func() {
				So(res.PerConsultant[0].Counts, ShouldResemble, model.Counts{Intakes: 1, Placements: 1})
				So(res.PerConsultant[1].Counts, ShouldResemble, model.Counts{Interviews: 2})
			})

			Convey("And names outside the roster are ignored", func() {
				So(res.Total.Placements, ShouldEqual, 1)
			})
		})

		Convey("When computing wider windows", func() {
			month := aggregate.Compute(r, entries, aggregate.NewWindow(aggregate.Month, ref), "")
			year := aggregate.Compute(r, entries, aggregate.NewWindow(aggregate.Year, ref), "")
			all := aggregate.Compute(r, entries, aggregate.NewWindow(aggregate.All, ref), "")

			So(month.PerConsultant[0].Intakes, ShouldEqual, 4)
			So(month.PerConsultant[2].Placements, ShouldEqual, 0)
			So(year.PerConsultant[2].Placements, ShouldEqual, 4)
			So(year.PerConsultant[1].Prospects, ShouldEqual, 0)
			So(all.PerConsultant[1].Prospects, ShouldEqual, 5)
		})

		Convey("When a consultant filter is set", func() {
			res := aggregate.Compute(r, entries, aggregate.NewWindow(aggregate.All, ref), "B")

			Convey("Then other consultants are zero but still present", func() {
				So(len(res.PerConsultant), ShouldEqual, 3)
				So(res.PerConsultant[0].Counts.IsZero(), ShouldBeTrue)
				So(res.PerConsultant[1].Counts, ShouldResemble, model.Counts{Interviews: 2, Prospects: 5})
				So(res.Total, ShouldResemble, res.PerConsultant[1].Counts)
			})
		})

		Convey("When the total is compared with the per-consultant sum", func() {
			for _, mode := range []aggregate.Mode{aggregate.Week, aggregate.Month, aggregate.Year, aggregate.All} {
				res := aggregate.Compute(r, entries, aggregate.NewWindow(mode, ref), "")
				var sum model.Counts
				for _, a := range res.PerConsultant {
					sum = sum.Add(a.Counts)
				}
				So(res.Total, ShouldResemble, sum)
			}
		})

		Convey("When an entry has no date but stored bucket fields", func() {
			legacy := model.Entry{ID: "legacy", Name: "C", Week: 20, Month: 5, Year: 2024, Placements: 2}
			res := aggregate.Compute(r, []model.Entry{legacy}, aggregate.NewWindow(aggregate.Week, ref), "")
			So(res.PerConsultant[2].Placements, ShouldEqual, 2)
		})

		Convey("When stored bucket fields disagree with the date", func() {
			stale := entry("A", ref, model.Counts{Intakes: 7})
			stale.Week = 1
			res := aggregate.Compute(r, []model.Entry{stale}, aggregate.NewWindow(aggregate.Week, ref), "")
			So(res.PerConsultant[0].Intakes, ShouldEqual, 7)
		})

		Convey("When there are no entries", func() {
			res := aggregate.Compute(r, nil, aggregate.NewWindow(aggregate.Week, ref), "")
			So(len(res.PerConsultant), ShouldEqual, 3)
			So(res.Total.IsZero(), ShouldBeTrue)
		})
	})
}
