package remark

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/unicode/norm"
)

const sampleResponse = `Dưới đây là các nhận xét:

### MỨC ĐIỂM 9-10
- nắm vững kiến thức bài học, vận dụng tốt.
- tích cực phát biểu xây dựng bài.
### MỨC ĐIỂM 8
* hiểu bài, hoàn thành tốt các bài tập.
### MỨC ĐIỂM 7
• cần cẩn thận hơn khi trình bày.
### MỨC ĐIỂM 6
### MỨC ĐIỂM 5
- cần cố gắng hơn.
### MỨC ĐIỂM <5
- chưa hoàn thành yêu cầu bài học.

Chúc thầy cô một ngày tốt lành!
`

func TestParse(t *testing.T) {
	convey.Convey("Given a generated remark block", t, func() {
		convey.Convey("When the text is empty", func() {
			p := Parse("")

			convey.Convey("Then the mapping is empty", func() {
				convey.So(p.Keys(), convey.ShouldBeEmpty)
				convey.So(p.Map(), convey.ShouldBeEmpty)
				convey.So(p.Total(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When one header has two bullets", func() {
			p := Parse("### MỨC ĐIỂM 8\n- a\n- b")

			convey.Convey("Then both remarks are capitalised in order", func() {
				convey.So(p.Map(), convey.ShouldResemble, map[string][]string{"8": {"A", "B"}})
			})
		})

		convey.Convey("When a bullet precedes every header", func() {
			p := Parse("- x\n### MỨC ĐIỂM 7\n- y")

			convey.Convey("Then the orphan bullet is dropped", func() {
				convey.So(p.Map(), convey.ShouldResemble, map[string][]string{"7": {"Y"}})
			})
		})

		convey.Convey("When the full six-band format is used", func() {
			p := Parse(sampleResponse)

			convey.Convey("Then every header becomes a key in order of appearance", func() {
				convey.So(p.Keys(), convey.ShouldResemble, []string{"9-10", "8", "7", "6", "5", "<5"})
			})

			convey.Convey("And each bullet style is accepted", func() {
				want := map[string][]string{
					"9-10": {"Nắm vững kiến thức bài học, vận dụng tốt.", "Tích cực phát biểu xây dựng bài."},
					"8":    {"Hiểu bài, hoàn thành tốt các bài tập."},
					"7":    {"Cần cẩn thận hơn khi trình bày."},
					"6":    {},
					"5":    {"Cần cố gắng hơn."},
					"<5":   {"Chưa hoàn thành yêu cầu bài học."},
				}
				if diff := cmp.Diff(want, p.Map()); diff != "" {
					t.Errorf("pools mismatch (-want +got):\n%s", diff)
				}
			})

			convey.Convey("And a header without bullets still exists", func() {
				convey.So(p.Has("6"), convey.ShouldBeTrue)
				convey.So(p.Len("6"), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a header repeats", func() {
			p := Parse("### MỨC ĐIỂM 8\n- first\n### MỨC ĐIỂM 7\n- seven\n### MỨC ĐIỂM 8\n- second")

			convey.Convey("Then the last section wins for that key", func() {
				convey.So(p.Remarks("8"), convey.ShouldResemble, []string{"Second"})
				convey.So(p.Remarks("7"), convey.ShouldResemble, []string{"Seven"})
				convey.So(p.Keys(), convey.ShouldResemble, []string{"8", "7"})
			})
		})

		convey.Convey("When a header has no descriptor", func() {
			p := Parse("### MỨC ĐIỂM\n- orphan")

			convey.Convey("Then the empty key holds the entries", func() {
				convey.So(p.Has(""), convey.ShouldBeTrue)
				convey.So(p.Remarks(""), convey.ShouldResemble, []string{"Orphan"})
			})
		})

		convey.Convey("When lines use CRLF and decomposed diacritics", func() {
			text := norm.NFD.String("### MỨC ĐIỂM <5\r\n-   cần ôn tập thêm.\r\n")
			p := Parse(text)

			convey.Convey("Then the key and remark are still recovered", func() {
				convey.So(p.Keys(), convey.ShouldResemble, []string{"<5"})
				convey.So(p.Len("<5"), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the text has no markup at all", func() {
			p := Parse("just some prose\nwith two lines")

			convey.Convey("Then nothing is collected", func() {
				convey.So(p.Map(), convey.ShouldBeEmpty)
			})
		})
	})
}

func TestClean(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"   ":             "",
		"- ":              "",
		"a":               "A",
		"-• * đạt yêu cầu": "Đạt yêu cầu",
		"Đã viết hoa":     "Đã viết hoa",
		"  9 điểm":        "9 điểm",
	}
	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}
