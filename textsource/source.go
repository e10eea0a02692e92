// Package textsource reads delimited text files, such as CSV files, as streams of rows.
//
// A Source never holds a file open between traversals: every traversal reopens the file and reads it from the
// start, so rows can be streamed any number of times, and grouped by column.
package textsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/deadlyengineer/streamquery"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoRows is returned when a file holds no rows, and a header was expected.
var ErrNoRows = errors.New("no rows")

// Row holds the fields of one line.
type Row []string

// Cell is a single field, together with the name of its column.
type Cell struct {
	Column string
	Value  string
}

// Source is a delimited text file.
type Source struct {
	path     string
	encoding encoding.Encoding
	opts     *options
}

// Open returns a Source for the file at path.
// It only checks that the file exists: the file is read by the traversals of Rows.
func Open(path string, opts ...Option) (*Source, error) {
	o := newOptions(opts...)

	enc := o.encoding

	if o.encodingName != "" {
		var err error

		enc, err = htmlindex.Get(o.encodingName)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %q", o.encodingName)
		}
	}

	info, err := o.fs.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	if info.IsDir() {
		return nil, errors.Newf("open %s: is a directory", path)
	}

	name, err := htmlindex.Name(enc)
	if err != nil {
		name = "unknown"
	}

	o.logger.Debug("text source opened",
		zap.String("path", path),
		zap.String("encoding", name),
		zap.Bool("header", o.header))

	return &Source{
		path:     path,
		encoding: enc,
		opts:     o,
	}, nil
}

// Rows returns a producer of the rows of the file, without the header row, if any.
// Every call reopens the file. Blank lines are skipped.
func (s *Source) Rows() streamquery.ProducerFunc[Row] {
	return streamquery.ProduceOpen(func() (streamquery.Iterator[Row], error) {
		file, reader, err := s.open()
		if err != nil {
			return nil, err
		}

		return &rows{
			file:   file,
			reader: reader,
			skip:   s.opts.header,
		}, nil
	})
}

// Header returns the first row of the file.
// It returns ErrNoRows if the file holds no rows.
func (s *Source) Header() (Row, error) {
	file, reader, err := s.open()
	if err != nil {
		return nil, err
	}

	defer file.Close() //nolint:errcheck // read only

	record, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRows
	}

	if err != nil {
		return nil, errors.Wrapf(err, "read header of %s", s.path)
	}

	return record, nil
}

// Separator returns the field separator, detecting it from the first line of the file if none was configured.
func (s *Source) Separator() (rune, error) {
	if s.opts.separator != 0 {
		return s.opts.separator, nil
	}

	file, err := s.opts.fs.Open(s.path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", s.path)
	}

	defer file.Close() //nolint:errcheck // read only

	line, err := s.decode(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, errors.Wrapf(err, "read %s", s.path)
	}

	return DetectSeparator(line, s.opts.candidates...), nil
}

// Count returns the number of rows, without the header row, if any.
// The file is read from the start on every call.
func (s *Source) Count(ctx context.Context) (uint64, error) {
	return streamquery.Count(ctx, s.Rows())
}

// Column returns a function that returns the field at index col of a row, or "" if the row is shorter.
func Column(col int) streamquery.Function[Row, string] {
	return func(row Row) string {
		if col < 0 || col >= len(row) {
			return ""
		}

		return row[col]
	}
}

// GroupBy groups the rows by the field at index col.
func (s *Source) GroupBy(ctx context.Context, col int, opts ...streamquery.Option) *streamquery.Groups[string, Row] {
	return streamquery.GroupBy(ctx, s.Rows(), Column(col), opts...)
}

// Columns groups the fields of all rows by column name.
// Column names are taken from the header row, or are the column indexes if the file has no header.
func (s *Source) Columns(ctx context.Context, opts ...streamquery.Option) (*streamquery.Groups[string, Cell], error) {
	var header Row

	if s.opts.header {
		var err error

		header, err = s.Header()
		if err != nil {
			return nil, err
		}
	}

	cells := streamquery.FlatMap(s.Rows(), streamquery.FuncMapper(func(row Row) streamquery.ProducerFunc[Cell] {
		rowCells := make([]Cell, len(row))
		for i, value := range row {
			rowCells[i] = Cell{
				Column: columnName(header, i),
				Value:  value,
			}
		}

		return streamquery.Produce(rowCells)
	}))

	return streamquery.GroupBy(ctx, cells, func(cell Cell) string {
		return cell.Column
	}, opts...), nil
}

func columnName(header Row, i int) string {
	if i < len(header) && header[i] != "" {
		return header[i]
	}

	return strconv.Itoa(i)
}

// open opens the file and returns a CSV reader over its decoded contents.
func (s *Source) open() (afero.File, *csv.Reader, error) {
	file, err := s.opts.fs.Open(s.path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", s.path)
	}

	decoded := s.decode(file)

	sep := s.opts.separator

	var in io.Reader = decoded

	if sep == 0 {
		line, err := decoded.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			_ = file.Close()
			return nil, nil, errors.Wrapf(err, "read %s", s.path)
		}

		sep = DetectSeparator(line, s.opts.candidates...)

		s.opts.logger.Debug("separator detected",
			zap.String("path", s.path),
			zap.String("separator", string(sep)))

		in = io.MultiReader(strings.NewReader(line), decoded)
	}

	reader := csv.NewReader(in)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return file, reader, nil
}

// decode returns a buffered reader of the contents of r, decoded to UTF-8.
// A leading byte order mark overrides the configured encoding.
func (s *Source) decode(r io.Reader) *bufio.Reader {
	return bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(s.encoding.NewDecoder())))
}

// rows iterates over the records of an open file.
type rows struct {
	file   afero.File
	reader *csv.Reader
	skip   bool
}

// Next implements streamquery.Iterator.
func (r *rows) Next() (Row, bool, error) {
	for {
		record, err := r.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}

		if err != nil {
			return nil, false, errors.Wrap(err, "read row")
		}

		if r.skip {
			r.skip = false
			continue
		}

		return record, true, nil
	}
}

// Close implements io.Closer.
func (r *rows) Close() error {
	return r.file.Close()
}
