package textsource_test

import (
	"github.com/cockroachdb/errors"
	"github.com/deadlyengineer/streamquery"
	"github.com/deadlyengineer/streamquery/textsource"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding/charmap"
)

const people = "name,city,score\nann,rome,3\nbob,oslo,5\n\ncid,rome,4\n"

var _ = Describe("Source", func() {
	var fs afero.Fs

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		Expect(afero.WriteFile(fs, "people.csv", []byte(people), 0o644)).To(Succeed())
	})

	Describe("Open", func() {
		It("Should fail for a missing file", func() {
			_, err := textsource.Open("missing.csv", textsource.WithFS(fs))
			Expect(err).To(HaveOccurred())
		})

		It("Should fail for a directory", func() {
			Expect(fs.Mkdir("dir", 0o755)).To(Succeed())
			_, err := textsource.Open("dir", textsource.WithFS(fs))
			Expect(err).To(HaveOccurred())
		})

		It("Should fail for an unknown encoding", func() {
			_, err := textsource.Open("people.csv", textsource.WithFS(fs), textsource.WithEncodingName("klingon"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Rows", func() {
		It("Should skip the header and blank lines", func() {
			src, err := textsource.Open("people.csv", textsource.WithFS(fs))
			Expect(err).ToNot(HaveOccurred())

			rows, err := streamquery.ReduceSlice(ctx, src.Rows())
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(Equal([]textsource.Row{
				{"ann", "rome", "3"},
				{"bob", "oslo", "5"},
				{"cid", "rome", "4"},
			}))
		})

		It("Should keep the first row without a header", func() {
			src, err := textsource.Open("people.csv", textsource.WithFS(fs), textsource.WithHeader(false))
			Expect(err).ToNot(HaveOccurred())

			count, err := src.Count(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(uint64(4)))
		})

		It("Should read the file from the start on every traversal", func() {
			src, err := textsource.Open("people.csv", textsource.WithFS(fs))
			Expect(err).ToNot(HaveOccurred())

			for i := 0; i < 3; i++ {
				count, err := src.Count(ctx)
				Expect(err).ToNot(HaveOccurred())
				Expect(count).To(Equal(uint64(3)))
			}
		})

		It("Should report a file removed after opening", func() {
			src, err := textsource.Open("people.csv", textsource.WithFS(fs))
			Expect(err).ToNot(HaveOccurred())
			Expect(fs.Remove("people.csv")).To(Succeed())

			_, err = src.Count(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Separator", func() {
		It("Should detect semicolons", func() {
			Expect(afero.WriteFile(fs, "semi.csv", []byte("name;city\nann;rome\nbob;oslo\n"), 0o644)).To(Succeed())

			src, err := textsource.Open("semi.csv", textsource.WithFS(fs))
			Expect(err).ToNot(HaveOccurred())

			sep, err := src.Separator()
			Expect(err).ToNot(HaveOccurred())
			Expect(sep).To(Equal(';'))

			rows, err := streamquery.ReduceSlice(ctx, src.Rows())
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(Equal([]textsource.Row{{"ann", "rome"}, {"bob", "oslo"}}))
		})

		It("Should use a configured separator", func() {
			Expect(afero.WriteFile(fs, "pipe.txt", []byte("a|b,c\n1|2,3\n"), 0o644)).To(Succeed())

			src, err := textsource.Open("pipe.txt", textsource.WithFS(fs), textsource.WithSeparator('|'))
			Expect(err).ToNot(HaveOccurred())

			header, err := src.Header()
			Expect(err).ToNot(HaveOccurred())
			Expect(header).To(Equal(textsource.Row{"a", "b,c"}))
		})
	})

	Describe("Header", func() {
		It("Should return the first row", func() {
			src, err := textsource.Open("people.csv", textsource.WithFS(fs))
			Expect(err).ToNot(HaveOccurred())

			header, err := src.Header()
			Expect(err).ToNot(HaveOccurred())
			Expect(header).To(Equal(textsource.Row{"name", "city", "score"}))
		})

		It("Should report an empty file", func() {
			Expect(afero.WriteFile(fs, "empty.csv", nil, 0o644)).To(Succeed())

			src, err := textsource.Open("empty.csv", textsource.WithFS(fs))
			Expect(err).ToNot(HaveOccurred())

			_, err = src.Header()
			Expect(errors.Is(err, textsource.ErrNoRows)).To(BeTrue())
		})
	})

	Describe("Encoding", func() {
		BeforeEach(func() {
			encoded, err := charmap.ISO8859_1.NewEncoder().String("name;city\nzoë;münchen\n")
			Expect(err).ToNot(HaveOccurred())
			Expect(afero.WriteFile(fs, "latin1.csv", []byte(encoded), 0o644)).To(Succeed())
		})

		It("Should decode a configured encoding", func() {
			src, err := textsource.Open("latin1.csv", textsource.WithFS(fs), textsource.WithEncoding(charmap.ISO8859_1))
			Expect(err).ToNot(HaveOccurred())

			rows, err := streamquery.ReduceSlice(ctx, src.Rows())
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(Equal([]textsource.Row{{"zoë", "münchen"}}))
		})

		It("Should decode an encoding given by name", func() {
			src, err := textsource.Open("latin1.csv", textsource.WithFS(fs), textsource.WithEncodingName("latin1"))
			Expect(err).ToNot(HaveOccurred())

			rows, err := streamquery.ReduceSlice(ctx, src.Rows())
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(Equal([]textsource.Row{{"zoë", "münchen"}}))
		})
	})

	Describe("Grouping", func() {
		It("Should group rows by column", func() {
			src, err := textsource.Open("people.csv", textsource.WithFS(fs))
			Expect(err).ToNot(HaveOccurred())

			groups := src.GroupBy(ctx, 1)

			keys, err := groups.Keys()
			Expect(err).ToNot(HaveOccurred())
			Expect(keys).To(Equal([]string{"rome", "oslo"}))

			sum, ok, err := streamquery.Sums(groups, func(row textsource.Row) streamquery.Number {
				return streamquery.ParsedAs(streamquery.KindLong)(textsource.Column(2)(row))
			}).Get(ctx, "rome")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(sum.Int64()).To(Equal(int64(7)))
		})

		It("Should group cells by column name", func() {
			src, err := textsource.Open("people.csv", textsource.WithFS(fs))
			Expect(err).ToNot(HaveOccurred())

			columns, err := src.Columns(ctx)
			Expect(err).ToNot(HaveOccurred())

			keys, err := columns.Keys()
			Expect(err).ToNot(HaveOccurred())
			Expect(keys).To(Equal([]string{"name", "city", "score"}))

			bucket, ok, err := columns.Get("city")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(bucket.Values()).To(Equal([]textsource.Cell{
				{Column: "city", Value: "rome"},
				{Column: "city", Value: "oslo"},
				{Column: "city", Value: "rome"},
			}))
		})

		It("Should name columns by index without a header", func() {
			src, err := textsource.Open("people.csv", textsource.WithFS(fs), textsource.WithHeader(false))
			Expect(err).ToNot(HaveOccurred())

			columns, err := src.Columns(ctx)
			Expect(err).ToNot(HaveOccurred())

			keys, err := columns.Keys()
			Expect(err).ToNot(HaveOccurred())
			Expect(keys).To(Equal([]string{"0", "1", "2"}))
		})

		It("Should return an empty field for short rows", func() {
			Expect(textsource.Column(5)(textsource.Row{"a"})).To(Equal(""))
			Expect(textsource.Column(0)(textsource.Row{"a"})).To(Equal("a"))
		})
	})
})
