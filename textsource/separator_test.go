package textsource_test

import (
	"github.com/deadlyengineer/streamquery/textsource"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DetectSeparator", func() {
	DescribeTable("Should pick the most frequent candidate",
		func(line string, candidates []rune, want rune) {
			Expect(textsource.DetectSeparator(line, candidates...)).To(Equal(want))
		},
		Entry("semicolons", "a;b;c", []rune{',', ';'}, ';'),
		Entry("commas", "a,b,c;d", []rune{',', ';'}, ','),
		Entry("tie", "a,b;c", []rune{',', ';'}, ','),
		Entry("none", "abc", []rune{';', ','}, ';'),
		Entry("tabs", "a\tb\tc,d", []rune{',', '\t'}, '\t'),
		Entry("no candidates", "a;b", []rune{}, ','),
	)
})
