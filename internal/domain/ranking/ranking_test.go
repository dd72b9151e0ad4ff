package ranking_test

import (
	"testing"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func agg(name string, intakes, interviews, placements int) model.Aggregate {
	return model.Aggregate{Name: name, Counts: model.Counts{Intakes: intakes, Interviews: interviews, Placements: placements}}
}

func names(as []model.Aggregate) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name
	}
	return out
}

func TestRank(t *testing.T) {
	Convey("Given aggregates with placement and intake ties", t, func() {
		per := []model.Aggregate{
			agg("A", 5, 0, 2),
			agg("B", 1, 0, 2),
			agg("C", 0, 0, 3),
		}

		Convey("When ranking", func() {
			ranked := ranking.Rank(per)

			Convey("Then placements win and intakes break the tie", func() {
				So(names(ranked), ShouldResemble, []string{"C", "A", "B"})
			})

			Convey("And the input is not modified", func() {
				So(names(per), ShouldResemble, []string{"A", "B", "C"})
			})
		})
	})

	Convey("Given aggregates tied on placements and intakes", t, func() {
		per := []model.Aggregate{agg("A", 1, 1, 1), agg("B", 1, 4, 1), agg("C", 1, 1, 1)}

		Convey("Then interviews break the tie and residual ties keep roster order", func() {
			So(names(ranking.Rank(per)), ShouldResemble, []string{"B", "A", "C"})
		})
	})

	Convey("Given an empty input", t, func() {
		So(ranking.Rank(nil), ShouldBeEmpty)
	})
}

func TestStandings(t *testing.T) {
	Convey("Given four consultants", t, func() {
		per := []model.Aggregate{agg("A", 0, 0, 1), agg("B", 0, 0, 4), agg("C", 0, 0, 3), agg("D", 0, 0, 0)}
		s := ranking.Standings(per)

		Convey("Then positions are 1-based with medals for the top three", func() {
			So(len(s), ShouldEqual, 4)
			So(s[0].Name, ShouldEqual, "B")
			So(s[0].Position, ShouldEqual, 1)
			So(s[0].Medal, ShouldEqual, ranking.Gold)
			So(s[1].Medal, ShouldEqual, ranking.Silver)
			So(s[2].Medal, ShouldEqual, ranking.Bronze)
			So(s[3].Medal, ShouldEqual, ranking.Finisher)
			So(s[3].Position, ShouldEqual, 4)
		})
	})
}
