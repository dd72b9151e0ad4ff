package calendar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/tally/internal/domain/calendar"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBucket(t *testing.T) {
	Convey("Given reference dates around year boundaries", t, func() {
		cases := []struct {
			date  time.Time
			week  int
			month int
			year  int
		}{
			{day(2021, time.January, 1), 53, 1, 2021},
			{day(2024, time.December, 31), 1, 12, 2024},
			{day(2020, time.December, 31), 53, 12, 2020},
			{day(2021, time.January, 4), 1, 1, 2021},
			{day(2023, time.January, 1), 52, 1, 2023},
			{day(2026, time.October, 15), 42, 10, 2026},
			{day(2015, time.December, 28), 53, 12, 2015},
			{day(2008, time.December, 29), 1, 12, 2008},
		}

		for _, c := range cases {
			p := calendar.Bucket(c.date)
			So(p.Week, ShouldEqual, c.week)
			So(p.Month, ShouldEqual, c.month)
			So(p.Year, ShouldEqual, c.year)
		}
	})

	Convey("Given every day across several years", t, func() {
		start := day(2018, time.January, 1)
		end := day(2030, time.December, 31)

		Convey("Then the week always matches the ISO-8601 week", func() {
			mismatches := 0
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				_, want := d.ISOWeek()
				if calendar.ISOWeek(d) != want {
					mismatches++
				}
			}
			So(mismatches, ShouldEqual, 0)
		})
	})

	Convey("Given an instant late in the day in a zone east of UTC", t, func() {
		tokyo := time.FixedZone("JST", 9*60*60)
		t1 := time.Date(2024, time.March, 4, 1, 30, 0, 0, tokyo)

		Convey("Then the day written on the calendar is kept", func() {
			So(calendar.Day(t1), ShouldEqual, day(2024, time.March, 4))
			So(calendar.Bucket(t1).Week, ShouldEqual, 10)
		})
	})
}

func TestParseDay(t *testing.T) {
	Convey("Given day strings", t, func() {
		Convey("When the input is a plain date", func() {
			d, err := calendar.ParseDay(" 2024-12-31 ")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, day(2024, time.December, 31))
		})

		Convey("When the input is an RFC3339 timestamp", func() {
			d, err := calendar.ParseDay("2024-05-01T00:00:00.000Z")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, day(2024, time.May, 1))
		})

		Convey("When the input is not a date", func() {
			_, err := calendar.ParseDay("yesterday")
			So(errors.Is(err, calendar.ErrInvalidDay), ShouldBeTrue)
		})
	})
}

func TestToday(t *testing.T) {
	Convey("Given a wall clock instant", t, func() {
		now := time.Date(2026, time.October, 15, 23, 59, 0, 0, time.FixedZone("X", -2*60*60))

		Convey("Then today is taken in UTC", func() {
			So(calendar.Today(now), ShouldEqual, day(2026, time.October, 16))
			So(calendar.FormatDay(calendar.Today(now)), ShouldEqual, "2026-10-16")
		})
	})
}

func TestPeriodString(t *testing.T) {
	Convey("Given a period", t, func() {
		So(calendar.Period{Week: 1, Month: 12, Year: 2024}.String(), ShouldEqual, "2024-12/W01")
	})
}
