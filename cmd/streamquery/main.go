package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/deadlyengineer/streamquery"
	"github.com/deadlyengineer/streamquery/textsource"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type configuration struct {
	File     string
	Group    int
	Value    int
	Sep      string
	Encoding string
	Kind     string
	Amount   int
	NoHeader bool
	Verbose  bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7C79FF"}).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}).
			Width(9)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#FF5F56", Dark: "#FF6B6B"})
)

func main() {
	config := parseArguments()

	logger, err := newLogger(config.Verbose)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // best effort

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// parseArguments processes command-line flags
func parseArguments() configuration {
	var config configuration

	flag.StringVar(&config.File, "file", "", "delimited text file to read")
	flag.IntVar(&config.Group, "group", 0, "index of the column to group rows by")
	flag.IntVar(&config.Value, "value", 1, "index of the numeric column to aggregate")
	flag.StringVar(&config.Sep, "sep", "", "field separator, detected from the first line if empty")
	flag.StringVar(&config.Encoding, "encoding", "", "character encoding of the file, such as latin1")
	flag.StringVar(&config.Kind, "kind", "double", "numeric kind of the value column: int, long, float, bigint, bigdecimal, double")
	flag.IntVar(&config.Amount, "amount", -1, "only aggregate the first n rows of every group")
	flag.BoolVar(&config.NoHeader, "no-header", false, "the first row holds data, not column names")
	flag.BoolVar(&config.Verbose, "v", false, "log debug output")

	flag.Parse()

	return config
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func run(ctx context.Context, config configuration, logger *zap.Logger) error {
	if config.File == "" {
		return errors.New("missing -file")
	}

	kind, err := parseKind(config.Kind)
	if err != nil {
		return err
	}

	opts := []textsource.Option{
		textsource.WithLogger(logger),
		textsource.WithHeader(!config.NoHeader),
	}

	if config.Sep != "" {
		sep, _ := utf8.DecodeRuneInString(config.Sep)
		opts = append(opts, textsource.WithSeparator(sep))
	}

	if config.Encoding != "" {
		opts = append(opts, textsource.WithEncodingName(config.Encoding))
	}

	src, err := textsource.Open(config.File, opts...)
	if err != nil {
		return err
	}

	groups := src.GroupBy(ctx, config.Group, streamquery.WithLogger(logger))
	defer groups.Close() //nolint:errcheck // always nil

	if config.Amount >= 0 {
		groups = groups.Amount(config.Amount)
	}

	keys, err := groups.Keys()
	if err != nil {
		return err
	}

	slices.Sort(keys)

	value := func(row textsource.Row) streamquery.Number {
		return streamquery.ParsedAs(kind)(textsource.Column(config.Value)(row))
	}

	sizes := streamquery.Sizes(groups)
	sums := streamquery.Sums(groups, value)
	averages := streamquery.Averages(groups, value)
	means := streamquery.Means(groups, value)
	mins := streamquery.MinsNumber(groups, value)
	maxes := streamquery.MaxesNumber(groups, value)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s: %d groups", config.File, len(keys))))

	for _, key := range keys {
		fmt.Println(keyStyle.Render(key))

		size, _, err := sizes.Get(ctx, key)
		if err != nil {
			return err
		}

		printLine("size", fmt.Sprint(size))
		printNumber(sums.Get(ctx, key))("sum")
		printNumber(averages.Get(ctx, key))("average")
		printNumber(means.Get(ctx, key))("mean")
		printRow(mins.Get(ctx, key))("min", config.Value)
		printRow(maxes.Get(ctx, key))("max", config.Value)
	}

	return nil
}

func parseKind(name string) (streamquery.Kind, error) {
	for kind := streamquery.KindInt; kind <= streamquery.KindDouble; kind++ {
		if kind.String() == name {
			return kind, nil
		}
	}

	return streamquery.KindInvalid, errors.Newf("unknown kind %q", name)
}

func printLine(label string, value string) {
	fmt.Println("  " + labelStyle.Render(label) + value)
}

func printNumber(n streamquery.Number, _ bool, err error) func(label string) {
	return func(label string) {
		if err != nil {
			printLine(label, errorStyle.Render(err.Error()))
			return
		}

		printLine(label, n.String())
	}
}

func printRow(row textsource.Row, _ bool, err error) func(label string, col int) {
	return func(label string, col int) {
		if err != nil {
			printLine(label, errorStyle.Render(err.Error()))
			return
		}

		printLine(label, textsource.Column(col)(row))
	}
}
